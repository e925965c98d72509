package routes

import (
	"sort"
	"time"

	"github.com/ali545454/backend/models"
	"github.com/ali545454/backend/storage"
	"github.com/kataras/iris/v12"
)

// AdminGetStats returns the dashboard counters.
func AdminGetStats(ctx iris.Context) {
	var users, owners, students, apartments, verified, reviews, views, conversations, messages int64

	storage.DB.Model(&models.User{}).Count(&users)
	storage.DB.Model(&models.User{}).Where("role = ?", "owner").Count(&owners)
	storage.DB.Model(&models.User{}).Where("role = ?", "student").Count(&students)
	storage.DB.Model(&models.Apartment{}).Count(&apartments)
	storage.DB.Model(&models.Apartment{}).Where("is_verified = ?", true).Count(&verified)
	storage.DB.Model(&models.Review{}).Count(&reviews)
	storage.DB.Model(&models.ApartmentView{}).Count(&views)
	storage.DB.Model(&models.Conversation{}).Count(&conversations)
	storage.DB.Model(&models.ChatMessage{}).Count(&messages)

	ctx.JSON(iris.Map{
		"users": iris.Map{
			"total":    users,
			"owners":   owners,
			"students": students,
		},
		"apartments": iris.Map{
			"total":    apartments,
			"verified": verified,
			"pending":  apartments - verified,
		},
		"reviews":       reviews,
		"views":         views,
		"conversations": conversations,
		"messages":      messages,
	})
}

// AdminGetActivity merges the latest signups, listings and reviews into
// one feed for the dashboard.
func AdminGetActivity(ctx iris.Context) {
	const feedLimit = 10

	type activityEntry struct {
		Kind    string    `json:"kind"`
		Text    string    `json:"text"`
		At      time.Time `json:"at"`
		Subject string    `json:"subject"`
	}
	feed := make([]activityEntry, 0, feedLimit*3)

	var users []models.User
	storage.DB.Order("created_at DESC").Limit(feedLimit).Find(&users)
	for _, user := range users {
		feed = append(feed, activityEntry{
			Kind:    "user_registered",
			Text:    user.FullName + " joined as " + user.Role,
			At:      user.CreatedAt,
			Subject: user.UUID,
		})
	}

	var apartments []models.Apartment
	storage.DB.Order("created_at DESC").Limit(feedLimit).Find(&apartments)
	for _, apartment := range apartments {
		feed = append(feed, activityEntry{
			Kind:    "apartment_listed",
			Text:    "New listing: " + apartment.Title,
			At:      apartment.CreatedAt,
			Subject: apartment.UUID,
		})
	}

	var reviews []models.Review
	storage.DB.Preload("Apartment").Order("created_at DESC").Limit(feedLimit).Find(&reviews)
	for _, review := range reviews {
		entry := activityEntry{
			Kind: "review_posted",
			At:   review.CreatedAt,
		}
		if review.Apartment != nil {
			entry.Text = "New review on " + review.Apartment.Title
			entry.Subject = review.Apartment.UUID
		} else {
			entry.Text = "New review"
		}
		feed = append(feed, entry)
	}

	// Newest first across all three sources.
	sort.Slice(feed, func(i, j int) bool { return feed[i].At.After(feed[j].At) })
	if len(feed) > feedLimit {
		feed = feed[:feedLimit]
	}
	ctx.JSON(iris.Map{"activity": feed})
}
