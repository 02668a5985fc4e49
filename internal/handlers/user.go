package handlers

import (
	"net/http"

	"github.com/Corvynix/PromptLibrary-sub000/internal/database"
	"github.com/Corvynix/PromptLibrary-sub000/internal/models"
	"github.com/gin-gonic/gin"
)

// GetProfile GET /users/:username
func GetProfile(c *gin.Context) {
	var user models.User
	if err := database.DB.First(&user, "username = ?", c.Param("username")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	database.DB.Model(&models.Prompt{}).Where("author_id = ?", user.ID).Count(&user.Count.Prompts)
	database.DB.Model(&models.UserFollow{}).Where("followed_id = ?", user.ID).Count(&user.Count.Followers)
	database.DB.Model(&models.UserBadge{}).Where("user_id = ?", user.ID).Count(&user.Count.Badges)

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetUserBadges GET /users/:username/badges
func GetUserBadges(c *gin.Context) {
	var user models.User
	if err := database.DB.Select("id").First(&user, "username = ?", c.Param("username")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var badges []models.UserBadge
	if err := database.DB.Preload("Badge").Where("user_id = ?", user.ID).Order("unlocked_at desc").Find(&badges).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch badges"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"badges": badges})
}

// GetUserKarma GET /users/:username/karma
// Returns a freshly calculated breakdown; the stored projection on the
// user row may lag behind until the next update.
func GetUserKarma(c *gin.Context) {
	var user models.User
	if err := database.DB.First(&user, "username = ?", c.Param("username")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	breakdown, err := karmaService.CalculateKarma(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate karma"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"karmaScore": user.KarmaScore,
		"breakdown":  breakdown,
	})
}

// FollowUser POST /users/:username/follow
func FollowUser(c *gin.Context) {
	followerID := c.GetString("userId")

	var target models.User
	if err := database.DB.First(&target, "username = ?", c.Param("username")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if target.ID == followerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot follow yourself"})
		return
	}

	var existing models.UserFollow
	if err := database.DB.First(&existing, "follower_id = ? AND followed_id = ?", followerID, target.ID).Error; err == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Already following"})
		return
	}

	follow := models.UserFollow{FollowerID: followerID, FollowedID: target.ID}
	if err := database.DB.Create(&follow).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow"})
		return
	}

	var follower models.User
	database.DB.Select("username").First(&follower, "id = ?", followerID)
	notifyService.Notify(models.Notification{
		UserID:  target.ID,
		Type:    models.NotificationTypeFollow,
		Title:   "New follower",
		Message: follower.Username + " started following you",
		Link:    "/users/" + follower.Username,
	})

	// Follower-count badges may have unlocked for the followed user.
	refreshReputation(target.ID)

	c.JSON(http.StatusCreated, gin.H{"message": "Following"})
}

// UnfollowUser DELETE /users/:username/follow
func UnfollowUser(c *gin.Context) {
	followerID := c.GetString("userId")

	var target models.User
	if err := database.DB.Select("id").First(&target, "username = ?", c.Param("username")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	database.DB.Where("follower_id = ? AND followed_id = ?", followerID, target.ID).Delete(&models.UserFollow{})

	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed"})
}
