package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/properties"
)

const (
	colorError   = 16711680
	colorWarning = 16753920
	colorSuccess = 65280
)

type DiscordMessage struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Fields      []DiscordField `json:"fields,omitempty"`
}

type DiscordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

var client = &http.Client{Timeout: 30 * time.Second}

// post sends one embed. An empty url means notifications are off.
func post(url string, embed DiscordEmbed) error {
	if url == "" {
		return nil
	}
	payload, err := json.Marshal(DiscordMessage{Embeds: []DiscordEmbed{embed}})
	if err != nil {
		return err
	}

	resp, err := client.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send Discord notification, status code: %d", resp.StatusCode)
	}
	return nil
}

func runField(runID string) []DiscordField {
	if runID == "" {
		return nil
	}
	return []DiscordField{{Name: "run", Value: runID, Inline: true}}
}

func SendDiscordErrorNotification(runID, errorMessage string) error {
	return post(properties.DiscordErrorNotificationUrl(), DiscordEmbed{
		Title:       "🚨 Error Notification",
		Description: fmt.Sprintf("So weird… must be your problem.\n\nAn error occurred: %s", errorMessage),
		Color:       colorError,
		Fields:      runField(runID),
	})
}

// SendDiscordWarnNotification reports a batch that finished with some
// failed items.
func SendDiscordWarnNotification(runID, warnMessage string) error {
	return post(properties.DiscordWarnNotificationUrl(), DiscordEmbed{
		Title:       "⚠️ Warning Notification",
		Description: fmt.Sprintf("It worked, mostly.\n\n%s", warnMessage),
		Color:       colorWarning,
		Fields:      runField(runID),
	})
}

func SendDiscordSuccessNotification(runID, successMessage string) error {
	return post(properties.DiscordSuccessNotificationUrl(), DiscordEmbed{
		Title:       "✅ Success Notification",
		Description: fmt.Sprintf("Not sure how, but it worked...\n\n%s", successMessage),
		Color:       colorSuccess,
		Fields:      runField(runID),
	})
}
