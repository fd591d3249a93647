package rlc

import (
	"time"

	"github.com/spf13/viper"

	"github.com/tecs2000/ns3-dualpi2/dualpi2"
)

// Config holds the attributes of an UM entity.
type Config struct {
	// MaxTxBufferSize is the admission limit of the transmission buffer in
	// bytes.
	MaxTxBufferSize uint32 `mapstructure:"maxTxBufferSize"`
	// ReorderingTimer is the value of the reordering timer.
	ReorderingTimer time.Duration `mapstructure:"reorderingTimer"`
	// EnablePdcpDiscarding enables discarding at the moment the PDCP SDU is
	// passed down, based on the head-of-line delay.
	EnablePdcpDiscarding bool `mapstructure:"enablePdcpDiscarding"`
	// DiscardTimerMs is the discard budget in milliseconds; 0 selects the
	// packet delay budget instead.
	DiscardTimerMs uint32 `mapstructure:"discardTimerMs"`
	// PacketDelayBudgetMs is the delay budget of the logical channel.
	PacketDelayBudgetMs uint32 `mapstructure:"packetDelayBudgetMs"`

	// AQM configures the DualPI2 transmission buffer.
	AQM dualpi2.Config `mapstructure:"aqm"`
}

// DefaultConfig returns the default attribute values.
func DefaultConfig() Config {
	return Config{
		MaxTxBufferSize:      10 * 1024,
		ReorderingTimer:      100 * time.Millisecond,
		EnablePdcpDiscarding: true,
		DiscardTimerMs:       0,
		PacketDelayBudgetMs:  100,
		AQM:                  dualpi2.DefaultConfig(),
	}
}

// LoadConfig reads attributes from a YAML file, filling unset keys with the
// defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return config, err
	}
	if err := v.Unmarshal(&config); err != nil {
		return config, err
	}
	return config, nil
}
