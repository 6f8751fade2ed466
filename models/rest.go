package models

import (
	"time"
)

var (
	ISO8601 = "2006-01-02T15:04:05-0700"
)

type Rest_Statitics_Bot struct {
	Users  int
	Guilds int
}

type Rest_Club_Current struct {
	Kind      string
	ItemRef   string
	Title     string
	Artist    string
	CoverURL  string
	ItemURL   string
	PickedBy  string
	StartedAt time.Time
}

type Rest_Club_Suggestion struct {
	UserID      string
	ItemRef     string
	Title       string
	Artist      string
	ItemURL     string
	Comment     string
	SubmittedAt time.Time
}

type Rest_Club_HistoryItem struct {
	ItemRef       string
	Title         string
	Artist        string
	ItemURL       string
	PickedBy      string
	StartedAt     time.Time
	EndedAt       time.Time
	AverageRating float64
	RatingsCount  int
}

type Rest_Club_RotationEntry struct {
	UserID    string
	PickCount int
}

const (
	Redis_Key_Club_History = "clubbot:rest:club-history:%s"
)
