package catalog

import "lokonnect/internal/models"

// fallbackEvents is the static dataset shown when the catalog API is
// unreachable, so the browse surface is never empty on first paint.
func fallbackEvents() []models.Event {
	return []models.Event{
		{
			ID:            "1",
			Title:         "Sunburn Arena ft. Martin Garrix",
			Category:      "Music",
			Date:          "2025-02-15",
			Time:          "20:00",
			Venue:         "Phoenix Marketcity",
			Location:      "Mumbai",
			Price:         2500,
			OriginalPrice: 3000,
			Discount:      17,
			Tags:          []string{"EDM", "Electronic", "Dance"},
			Capacity:      5000,
			Booked:        3200,
			Rating:        4.8,
			Reviews:       245,
		},
		{
			ID:            "2",
			Title:         "Stand-up Comedy Night",
			Category:      "Comedy",
			Date:          "2025-02-12",
			Time:          "19:30",
			Venue:         "Canvas Laugh Club",
			Location:      "Mumbai",
			Price:         800,
			OriginalPrice: 1000,
			Discount:      20,
			Tags:          []string{"Comedy", "Entertainment", "Stand-up"},
			Capacity:      200,
			Booked:        156,
			Rating:        4.6,
			Reviews:       89,
		},
		{
			ID:       "3",
			Title:    "Food & Wine Festival",
			Category: "Food",
			Date:     "2025-02-20",
			Time:     "18:00",
			Venue:    "Mahalaxmi Racecourse",
			Location: "Mumbai",
			Price:    1200,
			Tags:     []string{"Food", "Wine", "Culinary"},
			Capacity: 1000,
			Booked:   687,
			Rating:   4.7,
			Reviews:  156,
		},
		{
			ID:            "4",
			Title:         "Art Workshop: Abstract Painting",
			Category:      "Workshop",
			Date:          "2025-02-18",
			Time:          "14:00",
			Venue:         "Kala Ghoda Art District",
			Location:      "Mumbai",
			Price:         1500,
			OriginalPrice: 2000,
			Discount:      25,
			Tags:          []string{"Art", "Creative", "Learning"},
			Capacity:      30,
			Booked:        18,
			Rating:        4.9,
			Reviews:       24,
		},
		{
			ID:       "5",
			Title:    "Mumbai Marathon 2025",
			Category: "Sports",
			Date:     "2025-03-10",
			Time:     "05:30",
			Venue:    "Marine Drive",
			Location: "Mumbai",
			Price:    2500,
			Tags:     []string{"Marathon", "Running", "Fitness"},
			Capacity: 50000,
			Booked:   32000,
			Rating:   4.5,
			Reviews:  412,
		},
	}
}
