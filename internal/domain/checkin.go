package domain

import "time"

// Mood is the mother's self-reported state on a 1..3 scale.
type Mood int

const (
	MoodLow     Mood = 1
	MoodNeutral Mood = 2
	MoodGood    Mood = 3
)

func (m Mood) IsValid() bool {
	return m >= MoodLow && m <= MoodGood
}

// Checkin is a mother's daily mood entry. AIResponse holds the short
// validation message returned to her when the entry is saved.
type Checkin struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64" bson:"id"`
	UserID      string    `json:"user_id" gorm:"not null;size:64;index:idx_checkin_user_created,priority:1" bson:"user_id"`
	Mood        Mood      `json:"mood" gorm:"not null" bson:"mood"`
	SleepStart  *string   `json:"sleep_start" bson:"sleep_start,omitempty"`
	SleepEnd    *string   `json:"sleep_end" bson:"sleep_end,omitempty"`
	BabyWakeups *int      `json:"baby_wakeups" bson:"baby_wakeups,omitempty"`
	BrainDump   *string   `json:"brain_dump" bson:"brain_dump,omitempty"`
	AIResponse  *string   `json:"ai_response" bson:"ai_response,omitempty"`
	CreatedAt   time.Time `json:"created_at" gorm:"index:idx_checkin_user_created,priority:2" bson:"created_at"`
}
