package policy

import (
	"fmt"
	"os"

	"github.com/dafibh/payfi/payfi-backend/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DefaultsFile is the YAML layout of a policy defaults override, e.g.
//
//	enabled: true
//	penaltyMode: strict
//	dailySpendLimit: "0.10"
//	categoryLimits:
//	  food: 35
type DefaultsFile struct {
	Enabled              *bool                     `yaml:"enabled"`
	AutoRepay            *bool                     `yaml:"autoRepay"`
	PenaltyMode          *string                   `yaml:"penaltyMode"`
	DailySpendLimit      *string                   `yaml:"dailySpendLimit"`
	RequireApprovalAbove *string                   `yaml:"requireApprovalAbove"`
	CategoryLimits       map[string]yamlDecimalVal `yaml:"categoryLimits"`
}

type yamlDecimalVal struct {
	decimal.Decimal
}

// UnmarshalYAML accepts both numbers and quoted strings
func (v *yamlDecimalVal) UnmarshalYAML(node *yaml.Node) error {
	d, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("invalid decimal %q: %w", node.Value, err)
	}
	v.Decimal = d
	return nil
}

// LoadDefaults returns the built-in defaults overlaid with the YAML file at path.
// An empty path or a missing file yields the built-in defaults.
func LoadDefaults(path string) (*domain.AgentPolicy, error) {
	if path == "" {
		return DefaultAgentPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultAgentPolicy(), nil
		}
		return nil, fmt.Errorf("policy defaults read: %w", err)
	}

	var f DefaultsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("policy defaults unmarshal: %w", err)
	}

	patch, err := f.toPatch()
	if err != nil {
		return nil, err
	}
	return ValidatePolicy(patch), nil
}

func (f *DefaultsFile) toPatch() (*domain.AgentPolicyPatch, error) {
	patch := &domain.AgentPolicyPatch{
		Enabled:   f.Enabled,
		AutoRepay: f.AutoRepay,
	}
	if f.PenaltyMode != nil {
		mode := domain.PenaltyMode(*f.PenaltyMode)
		if !mode.IsValid() {
			return nil, fmt.Errorf("policy defaults: %w: %q", domain.ErrInvalidPenaltyMode, *f.PenaltyMode)
		}
		patch.PenaltyMode = &mode
	}
	if f.DailySpendLimit != nil {
		d, err := decimal.NewFromString(*f.DailySpendLimit)
		if err != nil {
			return nil, fmt.Errorf("policy defaults dailySpendLimit: %w", err)
		}
		patch.DailySpendLimit = &d
	}
	if f.RequireApprovalAbove != nil {
		d, err := decimal.NewFromString(*f.RequireApprovalAbove)
		if err != nil {
			return nil, fmt.Errorf("policy defaults requireApprovalAbove: %w", err)
		}
		patch.RequireApprovalAbove = &d
	}
	if len(f.CategoryLimits) > 0 {
		patch.CategoryLimits = make(map[domain.SpendingCategory]decimal.Decimal, len(f.CategoryLimits))
		for name, v := range f.CategoryLimits {
			c := domain.SpendingCategory(name)
			if !c.IsValid() {
				return nil, fmt.Errorf("policy defaults: %w: %q", domain.ErrInvalidCategory, name)
			}
			patch.CategoryLimits[c] = v.Decimal
		}
	}
	return patch, nil
}
