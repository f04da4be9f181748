package models

import (
	"errors"
	"strings"
)

// Event represents a bookable event or local service in the catalog.
// Events are immutable once fetched; the catalog never mutates them
// after load within a session.
type Event struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Category      string   `json:"category"`
	CategoryID    string   `json:"categoryId"`
	ProviderID    string   `json:"providerId"`
	Date          string   `json:"date"` // YYYY-MM-DD
	Time          string   `json:"time"` // HH:MM, 24h
	Venue         string   `json:"venue"`
	Location      string   `json:"location"`
	Price         float64  `json:"price"`
	OriginalPrice float64  `json:"originalPrice,omitempty"`
	Discount      int      `json:"discount,omitempty"` // percent off, display only
	Description   string   `json:"description,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Capacity      int      `json:"capacity"`
	Booked        int      `json:"booked"`
	Rating        float64  `json:"rating,omitempty"`
	Reviews       int      `json:"reviews,omitempty"`
	Image         string   `json:"image,omitempty"`
}

// Category represents a service category
type Category struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Icon   string `json:"icon,omitempty"`
}

// Provider represents a service provider offering events or services
type Provider struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"categoryId"`
	City       string `json:"city,omitempty"`
	Status     string `json:"status,omitempty"`
}

// Slot represents a provider time slot available for booking
type Slot struct {
	Time      string `json:"time"` // 12h clock, e.g. "6:30 PM"
	Available bool   `json:"available"`
}

// SpotsLeft returns the remaining capacity for the event.
func (e *Event) SpotsLeft() int {
	left := e.Capacity - e.Booked
	if left < 0 {
		return 0
	}
	return left
}

// MatchesSearch reports whether the event title or venue contains the
// query, case-insensitively. An empty query matches everything.
func (e *Event) MatchesSearch(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Title), q) ||
		strings.Contains(strings.ToLower(e.Venue), q)
}

// Validate validates the event data
func (e *Event) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return errors.New("event ID is required")
	}
	if strings.TrimSpace(e.Title) == "" {
		return errors.New("event title is required")
	}
	if e.Price < 0 {
		return errors.New("event price cannot be negative")
	}
	if e.Capacity < 0 {
		return errors.New("event capacity cannot be negative")
	}
	return nil
}
