package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Corvynix/PromptLibrary-sub000/internal/database"
	"github.com/Corvynix/PromptLibrary-sub000/internal/models"
	"github.com/Corvynix/PromptLibrary-sub000/internal/pqas"
	"github.com/Corvynix/PromptLibrary-sub000/pkg/logger"
	"github.com/Corvynix/PromptLibrary-sub000/pkg/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type createPromptRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	Type        models.PromptType `json:"type"`
	Tags        []string          `json:"tags"`
	Visibility  string            `json:"visibility"`
	Content     pqas.Content      `json:"content"`
}

// CreatePrompt POST /prompts
// Creates the prompt with its first version and scores the content
// synchronously.
func CreatePrompt(c *gin.Context) {
	userID := c.GetString("userId")

	var req createPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prompt payload"})
		return
	}
	if req.Type == "" {
		req.Type = models.PromptTypeText
	}
	if req.Visibility == "" {
		req.Visibility = "public"
	}

	prompt := models.Prompt{
		Title:       utils.SanitizeHTML(req.Title),
		Slug:        utils.GenerateSlug(req.Title) + "-" + utils.GenerateID()[:6],
		Description: req.Description,
		Type:        req.Type,
		Tags:        req.Tags,
		Visibility:  req.Visibility,
		AuthorID:    userID,
	}
	if err := database.DB.Create(&prompt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create prompt"})
		return
	}

	version, err := createScoredVersion(prompt.ID, 1, req.Content, "Initial version")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create prompt version"})
		return
	}

	convertReferralIfFirstPrompt(userID)
	refreshReputation(userID)

	prompt.Versions = []models.PromptVersion{version}
	c.JSON(http.StatusCreated, gin.H{"prompt": prompt})
}

// createScoredVersion persists a version plus its PQAS evaluation.
func createScoredVersion(promptID string, number int, content pqas.Content, note string) (models.PromptVersion, error) {
	version := models.PromptVersion{
		PromptID:        promptID,
		VersionNumber:   number,
		Body:            content.Text,
		System:          content.System,
		UserPrompt:      content.User,
		Instructions:    content.Instructions,
		MainPrompt:      content.MainPrompt,
		StoryboardSteps: content.StoryboardSteps,
		ChangeNote:      note,
	}
	if err := database.DB.Create(&version).Error; err != nil {
		return version, err
	}

	score := pqas.Evaluate(content)
	breakdown, _ := json.Marshal(score.Breakdown)
	record := models.QualityScore{
		VersionID:     version.ID,
		Clarity:       score.Clarity,
		Specificity:   score.Specificity,
		Effectiveness: score.Effectiveness,
		Consistency:   score.Consistency,
		Safety:        score.Safety,
		Efficiency:    score.Efficiency,
		Composite:     score.Composite,
		Breakdown:     string(breakdown),
	}
	if err := database.DB.Create(&record).Error; err != nil {
		return version, err
	}

	version.Score = &record
	return version, nil
}

// convertReferralIfFirstPrompt flips the user's inbound referral to
// converted when they publish their first prompt.
func convertReferralIfFirstPrompt(userID string) {
	var promptCount int64
	database.DB.Model(&models.Prompt{}).Where("author_id = ?", userID).Count(&promptCount)
	if promptCount != 1 {
		return
	}

	res := database.DB.Model(&models.Referral{}).
		Where("referred_id = ? AND converted = ?", userID, false).
		Update("converted", true)
	if res.Error != nil {
		logger.Warn().Err(res.Error).Str("userId", userID).Msg("Failed to convert referral")
	}
}

// GetPrompts GET /prompts?search=&tag=&limit=
func GetPrompts(c *gin.Context) {
	query := database.DB.Model(&models.Prompt{}).
		Preload("Author").
		Where("visibility = ?", "public").
		Order("created_at desc").
		Limit(50)

	if search := c.Query("search"); search != "" {
		term := utils.SanitizeSearchQuery(search)
		query = query.Where("title ILIKE ? OR description ILIKE ?", term, term)
	}
	if tag := c.Query("tag"); tag != "" {
		query = query.Where("? = ANY(tags)", tag)
	}

	var prompts []models.Prompt
	if err := query.Find(&prompts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch prompts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"prompts": prompts})
}

// GetPrompt GET /prompts/:id
func GetPrompt(c *gin.Context) {
	var prompt models.Prompt
	err := database.DB.
		Preload("Author").
		Preload("Versions", func(db *gorm.DB) *gorm.DB {
			return db.Order("version_number desc")
		}).
		Preload("Versions.Score").
		First(&prompt, "id = ?", c.Param("id")).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prompt not found"})
		return
	}

	if prompt.Visibility != "public" && prompt.AuthorID != c.GetString("userId") {
		c.JSON(http.StatusForbidden, gin.H{"error": "This prompt is private"})
		return
	}

	if viewerID := c.GetString("userId"); viewerID != "" {
		var vote models.Vote
		if err := database.DB.First(&vote, "user_id = ? AND votable_type = 'prompt' AND votable_id = ?", viewerID, prompt.ID).Error; err == nil {
			prompt.ViewerVote = string(vote.Value)
		}
	}

	c.JSON(http.StatusOK, gin.H{"prompt": prompt})
}

type createVersionRequest struct {
	Content    pqas.Content `json:"content"`
	ChangeNote string       `json:"changeNote"`
}

// CreateVersion POST /prompts/:id/versions
func CreateVersion(c *gin.Context) {
	userID := c.GetString("userId")

	var prompt models.Prompt
	if err := database.DB.First(&prompt, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prompt not found"})
		return
	}
	if prompt.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can add versions"})
		return
	}

	var req createVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid version payload"})
		return
	}

	var latest int
	database.DB.Model(&models.PromptVersion{}).
		Where("prompt_id = ?", prompt.ID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&latest)

	version, err := createScoredVersion(prompt.ID, latest+1, req.Content, req.ChangeNote)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create version"})
		return
	}

	refreshReputation(userID)

	c.JSON(http.StatusCreated, gin.H{"version": version})
}

// PreviewScore POST /prompts/preview-score
// Scores content without persisting anything. Pure and synchronous.
func PreviewScore(c *gin.Context) {
	var body struct {
		Content pqas.Content `json:"content"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid content payload"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"score": pqas.Evaluate(body.Content)})
}

// UsePrompt POST /prompts/:id/use
// Tracks one use of the prompt (copy/run from the UI).
func UsePrompt(c *gin.Context) {
	res := database.DB.Model(&models.Prompt{}).
		Where("id = ?", c.Param("id")).
		UpdateColumn("total_uses", gorm.Expr("total_uses + 1"))
	if res.Error != nil || res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prompt not found"})
		return
	}

	var prompt models.Prompt
	if err := database.DB.Select("author_id").First(&prompt, "id = ?", c.Param("id")).Error; err == nil {
		refreshReputation(prompt.AuthorID)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Use recorded"})
}

type remixRequest struct {
	SourceVersionID string       `json:"sourceVersionId"`
	Title           string       `json:"title" binding:"required"`
	Description     string       `json:"description"`
	Content         pqas.Content `json:"content"`
}

// RemixPrompt POST /prompts/:id/remix
// Forks a prompt version into a new prompt owned by the caller and records
// the remix lineage. The result version's score drives the remixer's
// remix-success karma.
func RemixPrompt(c *gin.Context) {
	userID := c.GetString("userId")

	var source models.Prompt
	if err := database.DB.First(&source, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prompt not found"})
		return
	}

	var req remixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid remix payload"})
		return
	}

	var sourceVersion models.PromptVersion
	versionQuery := database.DB.Where("prompt_id = ?", source.ID).Order("version_number desc")
	if req.SourceVersionID != "" {
		versionQuery = database.DB.Where("id = ? AND prompt_id = ?", req.SourceVersionID, source.ID)
	}
	if err := versionQuery.First(&sourceVersion).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source version not found"})
		return
	}

	remixPrompt := models.Prompt{
		Title:       utils.SanitizeHTML(req.Title),
		Slug:        utils.GenerateSlug(req.Title) + "-" + utils.GenerateID()[:6],
		Description: req.Description,
		Type:        source.Type,
		Tags:        source.Tags,
		Visibility:  "public",
		AuthorID:    userID,
	}
	if err := database.DB.Create(&remixPrompt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create remix"})
		return
	}

	version, err := createScoredVersion(remixPrompt.ID, 1, req.Content, fmt.Sprintf("Remixed from %s", source.Title))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create remix version"})
		return
	}

	remix := models.Remix{
		AuthorID:        userID,
		PromptID:        remixPrompt.ID,
		SourceVersionID: sourceVersion.ID,
		ResultVersionID: version.ID,
	}
	if err := database.DB.Create(&remix).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record remix"})
		return
	}

	convertReferralIfFirstPrompt(userID)
	refreshReputation(userID)

	c.JSON(http.StatusCreated, gin.H{"prompt": remixPrompt, "remix": remix})
}

type voteRequest struct {
	Value models.VoteValue `json:"value" binding:"required"`
}

// VotePrompt POST /prompts/:id/vote
func VotePrompt(c *gin.Context) {
	userID := c.GetString("userId")
	promptID := c.Param("id")

	// Redis-backed budget against vote spam; open when redis is down.
	if ok, _ := database.CheckRateLimit("vote:"+userID, 30, time.Minute); !ok {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Voting too fast"})
		return
	}

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Value != models.VoteUp && req.Value != models.VoteDown) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vote value must be 'up' or 'down'"})
		return
	}

	var prompt models.Prompt
	if err := database.DB.First(&prompt, "id = ?", promptID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prompt not found"})
		return
	}
	if prompt.AuthorID == userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot vote on your own prompt"})
		return
	}

	var vote models.Vote
	err := database.DB.First(&vote, "user_id = ? AND votable_type = 'prompt' AND votable_id = ?", userID, promptID).Error
	switch {
	case err == nil:
		vote.Value = req.Value
		if err := database.DB.Save(&vote).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vote"})
			return
		}
	default:
		vote = models.Vote{
			UserID:      userID,
			VotableType: "prompt",
			VotableID:   promptID,
			Value:       req.Value,
		}
		if err := database.DB.Create(&vote).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record vote"})
			return
		}
	}

	syncVoteCounters(promptID)
	refreshReputation(prompt.AuthorID)

	c.JSON(http.StatusOK, gin.H{"vote": vote})
}

// syncVoteCounters recomputes the cached counters from the votes table.
func syncVoteCounters(promptID string) {
	var up, down int64
	database.DB.Model(&models.Vote{}).Where("votable_type = 'prompt' AND votable_id = ? AND value = ?", promptID, models.VoteUp).Count(&up)
	database.DB.Model(&models.Vote{}).Where("votable_type = 'prompt' AND votable_id = ? AND value = ?", promptID, models.VoteDown).Count(&down)
	database.DB.Model(&models.Prompt{}).Where("id = ?", promptID).Updates(map[string]interface{}{
		"upvotes_count":   up,
		"downvotes_count": down,
	})
}
