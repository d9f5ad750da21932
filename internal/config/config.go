package config

import (
	"time"

	"github.com/spf13/viper"
)

// AuctionConfig holds the tunables of the bidding engine.
type AuctionConfig struct {
	MinBidAmount    int64
	MaxBidsPerSlot  int
	SlotLookahead   int
	LeaderboardSize int
	SweepInterval   time.Duration
	CurrencySymbol  string
}

// MusicConfig configures the external track search provider.
type MusicConfig struct {
	BaseURL  string
	CacheTTL time.Duration
}

// Operator is a seeded DJ/admin login. PasswordHash is a bcrypt hash.
type Operator struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
	Role         string `mapstructure:"role"`
}

// PublicConfig holds the externally visible base URL used for QR join codes.
type PublicConfig struct {
	BaseURL string
}

// LoadAuctionConfig returns auction settings with defaults matching the
// original product seed (min bid 50, 5 bids per slot, 5-slot look-ahead).
func LoadAuctionConfig() *AuctionConfig {
	viper.SetDefault("auction.min_bid_amount", 50)
	viper.SetDefault("auction.max_bids_per_slot", 5)
	viper.SetDefault("auction.slot_lookahead", 5)
	viper.SetDefault("auction.leaderboard_size", 10)
	viper.SetDefault("auction.sweep_interval", 30*time.Second)
	viper.SetDefault("auction.currency_symbol", "₹")

	return &AuctionConfig{
		MinBidAmount:    viper.GetInt64("auction.min_bid_amount"),
		MaxBidsPerSlot:  viper.GetInt("auction.max_bids_per_slot"),
		SlotLookahead:   viper.GetInt("auction.slot_lookahead"),
		LeaderboardSize: viper.GetInt("auction.leaderboard_size"),
		SweepInterval:   viper.GetDuration("auction.sweep_interval"),
		CurrencySymbol:  viper.GetString("auction.currency_symbol"),
	}
}

// LoadMusicConfig returns track search settings.
func LoadMusicConfig() *MusicConfig {
	viper.SetDefault("music.base_url", "https://api.deezer.com")
	viper.SetDefault("music.cache_ttl", 5*time.Minute)

	return &MusicConfig{
		BaseURL:  viper.GetString("music.base_url"),
		CacheTTL: viper.GetDuration("music.cache_ttl"),
	}
}

// LoadOperators reads the seeded operator accounts from config.
func LoadOperators() []Operator {
	var operators []Operator
	if err := viper.UnmarshalKey("auth.operators", &operators); err != nil {
		return nil
	}
	return operators
}

// LoadPublicConfig returns the public-facing URL settings.
func LoadPublicConfig() *PublicConfig {
	viper.SetDefault("public.base_url", "http://localhost:8080")
	return &PublicConfig{
		BaseURL: viper.GetString("public.base_url"),
	}
}
