package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"numclash/internal/domain"
)

type BetTier struct {
	ID      string `json:"id"`
	BaseBet int64  `json:"base_bet"`
}

type DealSettings struct {
	NumberCards    int     `json:"number_cards"`
	OperatorCards  int     `json:"operator_cards"`
	SpecialChance  float64 `json:"special_chance"`
	HandicapChance float64 `json:"handicap_chance"`
	TargetMin      int     `json:"target_min"`
	TargetMax      int     `json:"target_max"`
}

type GameConfig struct {
	TaxRate              float64   `json:"tax_rate"`
	DefaultTier          string    `json:"default_tier"`
	Tiers                []BetTier `json:"tiers"`
	RoundsToWin          int       `json:"rounds_to_win"`
	RoundDurationSeconds int       `json:"round_duration_seconds"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before adding a bot to a solo human lobby.
	BotAutoFillDelaySeconds int          `json:"bot_auto_fill_delay_seconds"`
	Deal                    DealSettings `json:"deal"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// GetBaseBet returns the base bet for a given tier ID, or the default if not found.
func GetBaseBet(tierID string) int64 {
	if cfg == nil {
		return 100 // Safe default
	}

	target := tierID
	if target == "" {
		target = cfg.DefaultTier
	}

	for _, tier := range cfg.Tiers {
		if tier.ID == target {
			return tier.BaseBet
		}
	}

	// Fallback to default tier if specific ID not found
	for _, tier := range cfg.Tiers {
		if tier.ID == cfg.DefaultTier {
			return tier.BaseBet
		}
	}

	return 100
}

// GetTaxRate returns the configured house cut, clamped to [0, 1).
func GetTaxRate() float64 {
	if cfg == nil || cfg.TaxRate < 0 || cfg.TaxRate >= 1 {
		return 0.05
	}
	return cfg.TaxRate
}

// GetRoundsToWin returns the configured match length, or 0 to let the
// app default apply.
func GetRoundsToWin() int {
	if cfg == nil {
		return 0
	}
	return cfg.RoundsToWin
}

// GetDealConfig maps the configured deal settings onto the dealer,
// keeping defaults for anything unset or out of range.
func GetDealConfig() domain.DealConfig {
	deal := domain.DefaultDealConfig()
	if cfg == nil {
		return deal
	}

	d := cfg.Deal
	if d.NumberCards >= 2 {
		deal.NumberCards = d.NumberCards
	}
	if d.OperatorCards > 0 {
		deal.OperatorCards = d.OperatorCards
	}
	if d.SpecialChance >= 0 && d.SpecialChance <= 1 {
		deal.SpecialChance = d.SpecialChance
	}
	if d.HandicapChance >= 0 && d.HandicapChance <= 1 {
		deal.HandicapChance = d.HandicapChance
	}
	if d.TargetMin > 0 && d.TargetMax >= d.TargetMin {
		deal.TargetMin = d.TargetMin
		deal.TargetMax = d.TargetMax
	}
	return deal
}
