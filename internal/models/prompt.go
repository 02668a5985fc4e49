package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type PromptType string

const (
	PromptTypeText  PromptType = "TEXT"
	PromptTypeImage PromptType = "IMAGE"
	PromptTypeVideo PromptType = "VIDEO"
)

type Prompt struct {
	ID        string         `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title       string         `json:"title"`
	Slug        string         `gorm:"uniqueIndex" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	Type        PromptType     `gorm:"type:text;default:'TEXT';index" json:"type"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
	Visibility  string         `gorm:"default:'public';index" json:"visibility"` // public/private

	// Stats & signals
	TotalUses      int `gorm:"default:0" json:"totalUses"`
	UpvotesCount   int `gorm:"default:0" json:"upvotesCount"`
	DownvotesCount int `gorm:"default:0" json:"downvotesCount"`

	// Virtual (auth context)
	ViewerVote string `gorm:"-" json:"viewerVote"` // "up", "down", or ""

	AuthorID string `gorm:"index" json:"authorId"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author"`

	Versions []PromptVersion `gorm:"foreignKey:PromptID" json:"versions,omitempty"`
}

func (p *Prompt) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

// PromptVersion is one immutable revision of a prompt's content. Content is
// stored column-per-field; Body holds plain-text prompts, the remaining
// fields the structured variants (image prompts carry MainPrompt, video
// prompts StoryboardSteps).
type PromptVersion struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	PromptID      string `gorm:"index" json:"promptId"`
	VersionNumber int    `gorm:"index" json:"versionNumber"`

	Body            string         `gorm:"type:text" json:"body"`
	System          string         `gorm:"type:text" json:"system"`
	UserPrompt      string         `gorm:"type:text" json:"user"`
	Instructions    string         `gorm:"type:text" json:"instructions"`
	MainPrompt      string         `gorm:"type:text" json:"mainPrompt"`
	StoryboardSteps pq.StringArray `gorm:"type:text[]" json:"storyboardSteps"`

	ChangeNote string `json:"changeNote"`

	Score *QualityScore `gorm:"foreignKey:VersionID" json:"score,omitempty"`
}

func (pv *PromptVersion) BeforeCreate(tx *gorm.DB) (err error) {
	if pv.ID == "" {
		pv.ID = uuid.New().String()
	}
	return
}

// QualityScore is the persisted PQAS result for one version. Composite is
// always derived from the axes at evaluation time, never edited on its own.
type QualityScore struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	VersionID string `gorm:"uniqueIndex" json:"versionId"`

	Clarity       int `json:"clarity"`
	Specificity   int `json:"specificity"`
	Effectiveness int `json:"effectiveness"`
	Consistency   int `json:"consistency"`
	Safety        int `json:"safety"`
	Efficiency    int `json:"efficiency"`
	Composite     int `gorm:"index" json:"composite"`

	// JSON: per-axis score + rationale, display only
	Breakdown string `gorm:"type:text" json:"breakdown"`
}

func (qs *QualityScore) BeforeCreate(tx *gorm.DB) (err error) {
	if qs.ID == "" {
		qs.ID = uuid.New().String()
	}
	return
}

// Remix records a derivative prompt forked from an existing version.
// ResultVersionID points at the first version of the new prompt; its
// quality score is what the remix success rate is judged on.
type Remix struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	AuthorID        string `gorm:"index" json:"authorId"` // the remixer
	PromptID        string `gorm:"index" json:"promptId"` // the new prompt
	SourceVersionID string `gorm:"index" json:"sourceVersionId"`
	ResultVersionID string `gorm:"index" json:"resultVersionId"`

	ResultVersion PromptVersion `gorm:"foreignKey:ResultVersionID" json:"resultVersion,omitempty"`
}

func (r *Remix) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}
