package botstate

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gridbot/db"
	"gridbot/models"
	"gridbot/utils"
)

// happeningsMaxChars bounds the stored happenings blob to roughly a
// thousand tokens of prompt budget.
const happeningsMaxChars = 4500

// moodDescriptions supplies a default description when the caller sets
// a mood without one.
var moodDescriptions = map[string]string{
	"chill":     "Relaxed and casual",
	"excited":   "Energetic and enthusiastic",
	"focused":   "Serious and attentive",
	"sarcastic": "Playfully snarky",
	"helpful":   "Eager to assist",
	"curious":   "Interested and inquisitive",
	"tired":     "Low energy, less talkative",
	"happy":     "Positive and upbeat",
}

// defaultMood is what the bot reports before any mood has been set.
var defaultMood = &models.MoodState{
	Mood:        "chill",
	Description: "Default relaxed mood",
	Intensity:   0.5,
}

type BotStateServiceImpl struct {
	botStateRepo *db.PostgresBotStateRepository
}

func NewBotStateService(botStateRepo *db.PostgresBotStateRepository) *BotStateServiceImpl {
	return &BotStateServiceImpl{botStateRepo: botStateRepo}
}

func (s *BotStateServiceImpl) SetMood(ctx context.Context, mood, description string, intensity float64) error {
	log.Printf("📋 Starting to set mood: %s (intensity: %.2f)", mood, intensity)

	if mood == "" {
		return fmt.Errorf("mood cannot be empty")
	}
	if intensity < 0 || intensity > 1 {
		return fmt.Errorf("intensity must be between 0 and 1, got: %.2f", intensity)
	}

	normalized := strings.ToLower(mood)
	if description == "" {
		if known, ok := moodDescriptions[normalized]; ok {
			description = known
		} else {
			description = fmt.Sprintf("Currently feeling %s", mood)
		}
	}

	err := s.botStateRepo.CreateMood(ctx, &models.MoodState{
		Mood:        normalized,
		Description: description,
		Intensity:   intensity,
	})
	if err != nil {
		return fmt.Errorf("failed to set mood: %w", err)
	}

	log.Printf("📋 Completed successfully - set mood to: %s", normalized)
	return nil
}

func (s *BotStateServiceImpl) GetMood(ctx context.Context) (*models.MoodState, error) {
	maybeMood, err := s.botStateRepo.GetLatestMood(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get mood: %w", err)
	}
	if mood, ok := maybeMood.Get(); ok {
		return mood, nil
	}
	return defaultMood, nil
}

func (s *BotStateServiceImpl) FormatMood(ctx context.Context) (string, error) {
	mood, err := s.GetMood(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Current mood: %s (%s, intensity: %.1f)", mood.Mood, mood.Description, mood.Intensity), nil
}

func (s *BotStateServiceImpl) SaveMemory(ctx context.Context, key, value string, source *string) error {
	log.Printf("📋 Starting to save memory: %s", key)

	if key == "" {
		return fmt.Errorf("memory key cannot be empty")
	}
	if value == "" {
		return fmt.Errorf("memory value cannot be empty")
	}

	err := s.botStateRepo.UpsertMemory(ctx, &models.MemoryEntry{
		Key:    key,
		Value:  value,
		Source: source,
	})
	if err != nil {
		return fmt.Errorf("failed to save memory: %w", err)
	}

	log.Printf("📋 Completed successfully - saved memory: %s", key)
	return nil
}

func (s *BotStateServiceImpl) DeleteMemory(ctx context.Context, key string) (bool, error) {
	log.Printf("📋 Starting to delete memory: %s", key)

	if key == "" {
		return false, fmt.Errorf("memory key cannot be empty")
	}

	deleted, err := s.botStateRepo.DeleteMemory(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to delete memory: %w", err)
	}

	log.Printf("📋 Completed successfully - delete memory %s (existed: %t)", key, deleted)
	return deleted, nil
}

func (s *BotStateServiceImpl) GetAllMemories(ctx context.Context) ([]*models.MemoryEntry, error) {
	memories, err := s.botStateRepo.GetAllMemories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get memories: %w", err)
	}
	return memories, nil
}

func (s *BotStateServiceImpl) FormatMemories(ctx context.Context) (string, error) {
	memories, err := s.GetAllMemories(ctx)
	if err != nil {
		return "", err
	}
	if len(memories) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString("Memory Bank (important things to remember):\n")
	for _, mem := range memories {
		b.WriteString("- ")
		b.WriteString(mem.Key)
		b.WriteString(": ")
		b.WriteString(mem.Value)
		if mem.Source != nil && *mem.Source != "" {
			b.WriteString(fmt.Sprintf(" (from %s)", *mem.Source))
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (s *BotStateServiceImpl) SetHappenings(ctx context.Context, content string) error {
	log.Printf("📋 Starting to set happenings summary (%d chars)", len(content))

	if content == "" {
		return fmt.Errorf("happenings content cannot be empty")
	}
	content = utils.TruncateRunes(content, happeningsMaxChars)

	err := s.botStateRepo.CreateHappening(ctx, &models.RecentHappening{Content: content})
	if err != nil {
		return fmt.Errorf("failed to set happenings: %w", err)
	}

	log.Printf("📋 Completed successfully - set happenings summary")
	return nil
}

func (s *BotStateServiceImpl) GetHappenings(ctx context.Context) (string, error) {
	maybeHappening, err := s.botStateRepo.GetLatestHappening(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get happenings: %w", err)
	}
	if happening, ok := maybeHappening.Get(); ok {
		return happening.Content, nil
	}
	return "", nil
}

func (s *BotStateServiceImpl) FormatHappenings(ctx context.Context) (string, error) {
	happenings, err := s.GetHappenings(ctx)
	if err != nil {
		return "", err
	}
	if happenings == "" {
		return "", nil
	}
	return fmt.Sprintf("Recent happenings across the server:\n%s", happenings), nil
}
