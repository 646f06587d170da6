package connector

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kollab_agentic/backend/internal/models"
	"github.com/kollab_agentic/backend/internal/utils"
)

// Source describes one connected external source and the files the
// caller selected from it.
type Source struct {
	Files []string `json:"files"`
}

// Fetch produces feedback records for the connected sources. Real
// connector APIs are out of scope, so each source yields plausible
// sample data shaped like what that source would return. Sources are
// visited in sorted order so output is stable for a given request.
func Fetch(sources map[string]Source) []models.FeedbackRecord {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	var records []models.FeedbackRecord
	for _, name := range names {
		records = append(records, fetchSource(name, sources[name])...)
	}
	return records
}

func fetchSource(name string, src Source) []models.FeedbackRecord {
	seed := int(utils.HashStringToUint64(name) % 7)

	var records []models.FeedbackRecord
	switch name {
	case "gdrive", "dropbox":
		for _, file := range src.Files {
			switch {
			case strings.Contains(file, "Survey"), strings.Contains(file, "Feedback"):
				records = append(records, surveyData(10, seed)...)
			case strings.Contains(file, "Reviews"):
				records = append(records, reviewData(8, seed)...)
			case strings.Contains(file, "Tickets"), strings.Contains(file, "Issues"):
				records = append(records, ticketData(12, seed)...)
			default:
				records = append(records, consolidatedData(15, seed)...)
			}
		}
	case "slack", "teams":
		records = append(records, chatData(15, name, seed)...)
	case "jira", "zendesk":
		batches := len(src.Files)
		if batches == 0 {
			batches = 1
		}
		for i := 0; i < batches; i++ {
			records = append(records, ticketData(12, seed)...)
		}
	default:
		records = append(records, consolidatedData(10, seed)...)
	}
	return records
}

var surveyFeedback = []string{
	"The product is too slow and crashes frequently",
	"I couldn't get the export feature to work properly",
	"The interface is confusing and hard to navigate",
	"Customer support was unhelpful and slow to respond",
	"Works most of the time with occasional issues",
	"Great features, especially the new dashboard",
	"Support team was very helpful and responsive",
}

func surveyData(count, seed int) []models.FeedbackRecord {
	cities := []string{"New York", "Los Angeles", "Chicago", "Houston", "Miami"}
	records := make([]models.FeedbackRecord, 0, count)
	for i := 0; i < count; i++ {
		k := (i + seed) % len(surveyFeedback)
		records = append(records, models.FeedbackRecord{
			"survey_id": fmt.Sprintf("SRV%d", 1000+i),
			"user":      fmt.Sprintf("user%d@example.com", i),
			"location":  cities[(i+seed)%len(cities)],
			"rating":    k%5 + 1,
			"feedback":  surveyFeedback[k],
			"timestamp": sampleTimestamp(i),
		})
	}
	return records
}

var reviewTexts = []string{
	"Disappointing product with many flaws. The app crashes frequently and loses my data.",
	"Very frustrated with this product. Customer service is terrible and the software has too many bugs.",
	"Average product. Some good features but also some annoying bugs that need to be fixed.",
	"Decent product but overpriced for what it offers.",
	"Excellent product! Very intuitive and has all the features I need.",
	"Outstanding software. Has saved me hours of work and the support team is fantastic.",
}

func reviewData(count, seed int) []models.FeedbackRecord {
	platforms := []string{"App Store", "Google Play", "Website"}
	records := make([]models.FeedbackRecord, 0, count)
	for i := 0; i < count; i++ {
		k := (i + seed) % len(reviewTexts)
		records = append(records, models.FeedbackRecord{
			"review_id":   fmt.Sprintf("REV%d", 2000+i),
			"user_name":   fmt.Sprintf("Reviewer%d", i),
			"platform":    platforms[(i+seed)%len(platforms)],
			"rating":      k + 1,
			"review_text": reviewTexts[k],
			"timestamp":   sampleTimestamp(i),
		})
	}
	return records
}

var ticketSubjects = []string{
	"Application crashes when exporting large files",
	"Cannot save changes in profile settings",
	"Search feature returns incorrect results",
	"Login fails intermittently",
	"Data not syncing between devices",
	"Add dark mode option",
	"App is too slow on older devices",
}

var ticketDescriptions = []string{
	"When I try to export files larger than 10MB, the application crashes without warning.",
	"Every time I try to save changes to my profile settings, I get an error message.",
	"The search feature returns unrelated results or misses obvious matches.",
	"I'm frequently unable to log in even though my password is correct.",
	"Changes made on my phone are not appearing on my desktop app.",
	"Please add a dark mode option to reduce eye strain at night.",
	"The app is getting very slow on my older device since the latest update.",
}

func ticketData(count, seed int) []models.FeedbackRecord {
	priorities := []string{"Low", "Medium", "High", "Critical"}
	records := make([]models.FeedbackRecord, 0, count)
	for i := 0; i < count; i++ {
		k := (i + seed) % len(ticketSubjects)
		records = append(records, models.FeedbackRecord{
			"ticket_id":   fmt.Sprintf("TCK%d", 3000+i),
			"customer":    fmt.Sprintf("customer%d@example.com", i),
			"priority":    priorities[(i+seed)%len(priorities)],
			"subject":     ticketSubjects[k],
			"description": ticketDescriptions[k],
			"created_at":  sampleTimestamp(i),
		})
	}
	return records
}

var chatMessages = []string{
	"I've been having trouble with the export feature. It crashes whenever I try to export a large file.",
	"The new update is causing the app to freeze frequently. Is anyone else experiencing this?",
	"Is there a way to customize the dashboard? I can't find this option anywhere.",
	"The mobile app is missing key features that are available on desktop. Very frustrating!",
	"Search functionality isn't working properly. It's not finding relevant results.",
	"Love the new UI design, but pages load slower now.",
}

func chatData(count int, source string, seed int) []models.FeedbackRecord {
	channels := map[string][]string{
		"slack": {"customer-feedback", "support-tickets", "product-discussions"},
		"teams": {"Customer Support Team", "Product Team", "Feedback"},
	}
	channelList, ok := channels[source]
	if !ok {
		channelList = []string{"general"}
	}
	records := make([]models.FeedbackRecord, 0, count)
	for i := 0; i < count; i++ {
		k := (i + seed) % len(chatMessages)
		records = append(records, models.FeedbackRecord{
			"message_id": fmt.Sprintf("MSG%d", 4000+i),
			"channel":    channelList[i%len(channelList)],
			"sender":     fmt.Sprintf("Customer%d", i),
			"message":    chatMessages[k],
			"timestamp":  sampleTimestamp(i),
		})
	}
	return records
}

func consolidatedData(count, seed int) []models.FeedbackRecord {
	third := count / 3
	records := surveyData(third, seed)
	records = append(records, reviewData(third, seed)...)
	records = append(records, ticketData(count-2*third, seed)...)
	return records
}

// sampleTimestamp backdates entries so lower indices look more recent.
func sampleTimestamp(index int) string {
	ts := time.Now().Add(-time.Duration(index) * 12 * time.Hour)
	return ts.Format("2006-01-02 15:04:05")
}
