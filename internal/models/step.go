package models

import (
	"fmt"
	"strings"
	"time"
)

// Step types supported by channel funnels.
const (
	StepTypeRegistration = "registration"
	StepTypeSubscription = "subscription"
	StepTypePurchase     = "purchase"
	StepTypePhotoUpload  = "photo_upload"
	StepTypeContentView  = "content_view"
	StepTypeQuizAnswer   = "quiz_answer"
	StepTypeSocialShare  = "social_share"
	StepTypeComment      = "comment"
	StepTypeLike         = "like"
	StepTypeFollow       = "follow"
)

// stepValidationRules is the static rule profile per step type. Instances
// can extend or replace individual keys through their validation config.
var stepValidationRules = map[string]JSON{
	StepTypeRegistration: {
		"required_fields":   []interface{}{"email", "name"},
		"validation_method": "email_confirmation",
		"timeout_minutes":   30,
	},
	StepTypeSubscription: {
		"required_fields":   []interface{}{"email", "subscription_type"},
		"validation_method": "email_verification",
		"timeout_minutes":   15,
	},
	StepTypePurchase: {
		"required_fields":   []interface{}{"order_id", "amount"},
		"validation_method": "payment_confirmation",
		"timeout_minutes":   60,
	},
	StepTypePhotoUpload: {
		"required_fields":   []interface{}{"image_url"},
		"validation_method": "image_verification",
		"max_file_size":     "5MB",
		"allowed_formats":   []interface{}{"jpg", "png", "gif"},
	},
	StepTypeContentView: {
		"required_fields":   []interface{}{"content_id", "view_duration"},
		"validation_method": "analytics_tracking",
		"min_view_duration": 30,
	},
	StepTypeQuizAnswer: {
		"required_fields":     []interface{}{"answers"},
		"validation_method":   "answer_verification",
		"min_correct_answers": 1,
	},
	StepTypeSocialShare: {
		"required_fields":   []interface{}{"share_url", "platform"},
		"validation_method": "share_tracking",
		"timeout_minutes":   10,
	},
	StepTypeComment: {
		"required_fields":   []interface{}{"comment_text", "post_id"},
		"validation_method": "comment_verification",
		"min_length":        10,
	},
	StepTypeLike: {
		"required_fields":   []interface{}{"post_id", "platform"},
		"validation_method": "like_verification",
		"timeout_minutes":   5,
	},
	StepTypeFollow: {
		"required_fields":   []interface{}{"account_handle", "platform"},
		"validation_method": "follow_verification",
		"timeout_minutes":   10,
	},
}

var stepIcons = map[string]string{
	StepTypeRegistration: "📝",
	StepTypeSubscription: "📧",
	StepTypePurchase:     "💳",
	StepTypePhotoUpload:  "📸",
	StepTypeContentView:  "👀",
	StepTypeQuizAnswer:   "❓",
	StepTypeSocialShare:  "📤",
	StepTypeComment:      "💬",
	StepTypeLike:         "❤️",
	StepTypeFollow:       "👥",
}

const defaultStepIcon = "✅"

// IsValidStepType reports whether t is a known step type.
func IsValidStepType(t string) bool {
	_, ok := stepValidationRules[t]
	return ok
}

// Step represents an ordered action a participant completes within a channel
type Step struct {
	ID        string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ChannelID string `json:"channel_id" gorm:"not null;index;type:uuid"`

	StepType    string `json:"step_type" gorm:"type:varchar(50);not null;index"`
	StepName    string `json:"step_name" gorm:"type:varchar(100);not null"`
	Description string `json:"description" gorm:"type:text"`

	StepOrder  int  `json:"step_order" gorm:"not null;default:1"`
	IsRequired bool `json:"is_required" gorm:"default:true"`
	IsActive   bool `json:"is_active" gorm:"default:true;index"`

	// Per-instance overrides merged over the static rule profile
	ValidationConfig JSON `json:"validation_config" gorm:"type:jsonb"`

	RewardPoints      int    `json:"reward_points" gorm:"default:0"`
	RewardDescription string `json:"reward_description" gorm:"type:varchar(200)"`

	TotalAttempts    int `json:"total_attempts" gorm:"default:0"`
	TotalCompletions int `json:"total_completions" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Channel Channel         `json:"channel,omitempty" gorm:"foreignKey:ChannelID;references:ID;constraint:OnDelete:CASCADE"`
	Events  []TrackingEvent `json:"events,omitempty" gorm:"foreignKey:StepID;references:ID"`
}

// TableName specifies the table name for the Step model
func (Step) TableName() string {
	return "referral_steps"
}

// ValidationRules returns the static rule profile for the step's type.
func (s *Step) ValidationRules() JSON {
	if rules, ok := stepValidationRules[s.StepType]; ok {
		return rules
	}
	return JSON{}
}

// EffectiveRules merges the static rule profile with the per-instance
// validation config; instance keys win on collision.
func (s *Step) EffectiveRules() JSON {
	merged := JSON{}
	for k, v := range s.ValidationRules() {
		merged[k] = v
	}
	for k, v := range s.ValidationConfig {
		merged[k] = v
	}
	return merged
}

// Validate checks submitted step data against the effective rules. A failed
// validation is a normal result carrying human-readable reasons, never an
// error value.
func (s *Step) Validate(data map[string]interface{}) (bool, []string) {
	rules := s.EffectiveRules()
	errs := []string{}

	for _, f := range toStringSlice(rules["required_fields"]) {
		if v, ok := data[f]; !ok || !truthy(v) {
			errs = append(errs, fmt.Sprintf("field '%s' is required", f))
		}
	}

	switch s.StepType {
	case StepTypePhotoUpload:
		if raw, ok := data["image_url"].(string); ok && raw != "" {
			allowed := toStringSlice(rules["allowed_formats"])
			if len(allowed) == 0 {
				allowed = []string{"jpg", "png"}
			}
			parts := strings.Split(raw, ".")
			ext := strings.ToLower(parts[len(parts)-1])
			if !containsString(allowed, ext) {
				errs = append(errs, fmt.Sprintf("unsupported file format, allowed: %s", strings.Join(allowed, ", ")))
			}
		}
	case StepTypeQuizAnswer:
		if answers, ok := data["answers"].([]interface{}); ok {
			minCorrect := toInt(rules["min_correct_answers"], 1)
			correct := 0
			for _, a := range answers {
				if m, ok := a.(map[string]interface{}); ok && truthy(m["is_correct"]) {
					correct++
				}
			}
			if correct < minCorrect {
				errs = append(errs, fmt.Sprintf("at least %d correct answers required", minCorrect))
			}
		}
	case StepTypeComment:
		if text, ok := data["comment_text"].(string); ok && text != "" {
			minLength := toInt(rules["min_length"], 10)
			if len([]rune(text)) < minLength {
				errs = append(errs, fmt.Sprintf("comment must be at least %d characters long", minLength))
			}
		}
	}

	return len(errs) == 0, errs
}

// CompletionRate returns completions as a percentage of attempts,
// zero-guarded.
func (s *Step) CompletionRate() float64 {
	return percentage(s.TotalCompletions, s.TotalAttempts)
}

// Icon returns the display glyph for the step's type.
func (s *Step) Icon() string {
	if icon, ok := stepIcons[s.StepType]; ok {
		return icon
	}
	return defaultStepIcon
}

func toStringSlice(v interface{}) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []interface{}:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// toInt converts numeric rule values that may arrive as float64 after a
// JSON round trip.
func toInt(v interface{}, fallback int) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return fallback
}

// truthy mirrors the loose presence check used on submitted step data:
// nil, empty strings, zero numbers, false and empty collections all count
// as absent.
func truthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	case []interface{}:
		return len(val) > 0
	case map[string]interface{}:
		return len(val) > 0
	}
	return true
}

// CreateStepRequest represents the request to create a step
type CreateStepRequest struct {
	StepType          string                 `json:"step_type" binding:"required" example:"photo_upload"`
	StepName          string                 `json:"step_name" binding:"required" example:"Upload a photo"`
	Description       string                 `json:"description"`
	StepOrder         int                    `json:"step_order" example:"1"`
	IsRequired        *bool                  `json:"is_required"`
	RewardPoints      int                    `json:"reward_points"`
	RewardDescription string                 `json:"reward_description"`
	ValidationConfig  map[string]interface{} `json:"validation_config"`
}

// UpdateStepRequest represents the request to update a step
type UpdateStepRequest struct {
	StepName          *string                `json:"step_name"`
	Description       *string                `json:"description"`
	StepOrder         *int                   `json:"step_order"`
	IsRequired        *bool                  `json:"is_required"`
	IsActive          *bool                  `json:"is_active"`
	RewardPoints      *int                   `json:"reward_points"`
	RewardDescription *string                `json:"reward_description"`
	ValidationConfig  map[string]interface{} `json:"validation_config"`
}

// CompleteStepRequest carries submitted data for a step completion attempt
type CompleteStepRequest struct {
	UserID string                 `json:"user_id"`
	Data   map[string]interface{} `json:"data" binding:"required"`
}

// StepResponse represents the owner-facing step projection
type StepResponse struct {
	ID                string                 `json:"id"`
	ChannelID         string                 `json:"channel_id"`
	StepType          string                 `json:"step_type"`
	StepName          string                 `json:"step_name"`
	Description       string                 `json:"description"`
	StepOrder         int                    `json:"step_order"`
	IsRequired        bool                   `json:"is_required"`
	IsActive          bool                   `json:"is_active"`
	RewardPoints      int                    `json:"reward_points"`
	RewardDescription string                 `json:"reward_description"`
	Icon              string                 `json:"icon"`
	TotalAttempts     int                    `json:"total_attempts"`
	TotalCompletions  int                    `json:"total_completions"`
	CompletionRate    float64                `json:"completion_rate"`
	ValidationConfig  map[string]interface{} `json:"validation_config,omitempty"`
	ValidationRules   map[string]interface{} `json:"validation_rules,omitempty"`
	CreatedAt         string                 `json:"created_at"`
	UpdatedAt         string                 `json:"updated_at"`
}

// StepCompletionResult is the outcome of a completion attempt. Failed
// validation is expressed here, not as an error.
type StepCompletionResult struct {
	Completed     bool     `json:"completed"`
	Errors        []string `json:"errors,omitempty"`
	RewardPoints  int      `json:"reward_points,omitempty"`
	RewardGranted bool     `json:"reward_granted"`
}
