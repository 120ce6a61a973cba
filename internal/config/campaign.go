package config

import (
	"fmt"
	"os"

	"github.com/KirkDiggler/spinwin/internal/wheel"
	"gopkg.in/yaml.v3"
)

// Campaign is one deployment's wheel: what can be won, how the slices are
// laid out and how the outcome is chosen
type Campaign struct {
	Policy         string         `yaml:"policy"`
	FixedSlice     int            `yaml:"fixed_slice"`
	DuplicateCheck bool           `yaml:"duplicate_check"`
	Geometry       wheel.Geometry `yaml:"geometry"`
	Prizes         []wheel.Prize  `yaml:"prizes"`
	Slices         []wheel.Slice  `yaml:"slices"`
}

// DefaultCampaign is the stock ten-slice gift card wheel
func DefaultCampaign() *Campaign {
	return &Campaign{
		Policy:         wheel.PolicyFixed,
		FixedSlice:     wheel.DefaultFixedSlice,
		DuplicateCheck: true,
		Geometry:       wheel.DefaultGeometry(),
		Prizes:         wheel.DefaultPrizes(),
		Slices:         wheel.DefaultSlices(),
	}
}

// LoadCampaign reads a campaign from a YAML file. Omitted fields keep the
// default campaign's values; a missing slice_count follows the slice list.
func LoadCampaign(path string) (*Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read campaign file: %w", err)
	}

	campaign := DefaultCampaign()
	campaign.Geometry.SliceCount = 0
	if err := yaml.Unmarshal(data, campaign); err != nil {
		return nil, fmt.Errorf("failed to parse campaign file: %w", err)
	}

	if campaign.Geometry.SliceCount == 0 {
		campaign.Geometry.SliceCount = len(campaign.Slices)
	}

	return campaign, nil
}

// Table returns the prize catalog bound to the slice list
func (c *Campaign) Table() *wheel.Table {
	return &wheel.Table{
		Prizes: c.Prizes,
		Slices: c.Slices,
	}
}

// SelectionPolicy builds the configured policy
func (c *Campaign) SelectionPolicy() (wheel.Policy, error) {
	return wheel.PolicyByName(c.Policy, c.FixedSlice)
}

// Validate checks the campaign would produce a working wheel
func (c *Campaign) Validate() error {
	table := c.Table()
	if err := table.Validate(); err != nil {
		return fmt.Errorf("invalid campaign: %w", err)
	}
	if err := c.Geometry.Validate(); err != nil {
		return fmt.Errorf("invalid campaign: %w", err)
	}
	if c.Geometry.SliceCount != len(c.Slices) {
		return fmt.Errorf("invalid campaign: %w", wheel.ErrSliceCountMismatch)
	}

	policy, err := c.SelectionPolicy()
	if err != nil {
		return fmt.Errorf("invalid campaign: %w", err)
	}
	if fixed, ok := policy.(wheel.FixedSlice); ok {
		if err := fixed.Validate(table); err != nil {
			return fmt.Errorf("invalid campaign: %w", err)
		}
	}

	return nil
}
