package models

import (
	"time"

	"gorm.io/datatypes"
)

// BusinessHours is the weekly opening of the salon on one weekday.
type BusinessHours struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	BarbershopID uint `gorm:"uniqueIndex:idx_business_hours_day;not null" json:"barbershop_id"`

	Weekday   int    `gorm:"uniqueIndex:idx_business_hours_day;not null" json:"weekday"`
	IsActive  bool   `json:"is_active"`
	StartTime string `gorm:"size:5" json:"start_time"`
	EndTime   string `gorm:"size:5" json:"end_time"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Weekdays is a list of weekdays (0 = Sunday) stored as a JSON array.
type Weekdays = datatypes.JSONSlice[int]

type RecurringBreak struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	BarbershopID uint `gorm:"index;not null" json:"barbershop_id"`

	Name           string   `gorm:"size:100;not null" json:"name"`
	StartTime      string   `gorm:"size:5;not null" json:"start_time"`
	EndTime        string   `gorm:"size:5;not null" json:"end_time"`
	RecurrenceType string   `gorm:"size:20;not null" json:"recurrence_type"`
	DaysOfWeek     Weekdays `gorm:"type:text;not null" json:"days_of_week"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ScheduleException struct {
	ID           uint  `gorm:"primaryKey" json:"id"`
	BarbershopID uint  `gorm:"index;not null" json:"barbershop_id"`
	BarberID     *uint `gorm:"index" json:"barber_id"`

	StartDate           string `gorm:"size:10;not null" json:"start_date"`
	EndDate             string `gorm:"size:10;not null" json:"end_date"`
	ExceptionType       string `gorm:"size:20;not null" json:"exception_type"`
	SpecialStartTime    string `gorm:"size:5" json:"special_start_time"`
	SpecialEndTime      string `gorm:"size:5" json:"special_end_time"`
	IsRecurringAnnually bool   `json:"is_recurring_annually"`
	Reason              string `gorm:"size:255" json:"reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
