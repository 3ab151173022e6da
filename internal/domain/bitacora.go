package domain

import (
	"time"

	"gorm.io/datatypes"
)

// MaxNaps is the number of nap slots in a daily log.
const MaxNaps = 3

type NapEntry struct {
	LaidDownTime    *string `json:"laid_down_time,omitempty" bson:"laid_down_time,omitempty"`
	FellAsleepTime  *string `json:"fell_asleep_time,omitempty" bson:"fell_asleep_time,omitempty"`
	HowFellAsleep   *string `json:"how_fell_asleep,omitempty" bson:"how_fell_asleep,omitempty"`
	WokeUpTime      *string `json:"woke_up_time,omitempty" bson:"woke_up_time,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty" bson:"duration_minutes,omitempty"`
}

// Recorded reports whether the nap carries enough data to be summarized.
func (n NapEntry) Recorded() bool {
	return (n.LaidDownTime != nil && *n.LaidDownTime != "") || (n.DurationMinutes != nil && *n.DurationMinutes > 0)
}

type NightWaking struct {
	Time            *string `json:"time,omitempty" bson:"time,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty" bson:"duration_minutes,omitempty"`
	WhatWasDone     *string `json:"what_was_done,omitempty" bson:"what_was_done,omitempty"`
}

// Bitacora is the daily sleep log a client fills in for the coach.
type Bitacora struct {
	ID                      string                           `json:"id" gorm:"primaryKey;size:64" bson:"id"`
	UserID                  string                           `json:"user_id" gorm:"not null;size:64;index:idx_bitacora_user_date,priority:1;index:idx_bitacora_user_created,priority:1" bson:"user_id"`
	DayNumber               int                              `json:"day_number" bson:"day_number"`
	Date                    string                           `json:"date" gorm:"not null;size:10;index:idx_bitacora_user_date,priority:2" bson:"date"`
	PreviousDayWakeTime     *string                          `json:"previous_day_wake_time" bson:"previous_day_wake_time,omitempty"`
	Naps                    datatypes.JSONSlice[NapEntry]    `json:"naps" gorm:"type:jsonb" bson:"naps"`
	HowBabyAte              *string                          `json:"how_baby_ate" bson:"how_baby_ate,omitempty"`
	RelaxingRoutineStart    *string                          `json:"relaxing_routine_start" bson:"relaxing_routine_start,omitempty"`
	BabyMood                *string                          `json:"baby_mood" bson:"baby_mood,omitempty"`
	LastFeedingTime         *string                          `json:"last_feeding_time" bson:"last_feeding_time,omitempty"`
	LaidDownForBed          *string                          `json:"laid_down_for_bed" bson:"laid_down_for_bed,omitempty"`
	FellAsleepAt            *string                          `json:"fell_asleep_at" bson:"fell_asleep_at,omitempty"`
	TimeToFallAsleepMinutes *int                             `json:"time_to_fall_asleep_minutes" bson:"time_to_fall_asleep_minutes,omitempty"`
	NumberOfWakings         *int                             `json:"number_of_wakings" bson:"number_of_wakings,omitempty"`
	NightWakings            datatypes.JSONSlice[NightWaking] `json:"night_wakings" gorm:"type:jsonb" bson:"night_wakings"`
	MorningWakeTime         *string                          `json:"morning_wake_time" bson:"morning_wake_time,omitempty"`
	Notes                   *string                          `json:"notes" bson:"notes,omitempty"`
	AISummary               *string                          `json:"ai_summary" bson:"ai_summary,omitempty"`
	CreatedAt               time.Time                        `json:"created_at" gorm:"index:idx_bitacora_user_created,priority:2" bson:"created_at"`
	UpdatedAt               time.Time                        `json:"updated_at" bson:"updated_at"`
}
