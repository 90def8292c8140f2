package search

import "github.com/civicsource/civicsource/internal/civic"

func ptr[T any](v T) *T { return &v }

// Sample is a small Memphis directory served when no live source answers.
func Sample() []civic.Candidate {
	return []civic.Candidate{
		{
			Name:                 "GreenScape Memphis",
			Address:              "1840 Union Ave, Memphis, TN 38104",
			Rating:               ptr(4.8),
			Reviews:              ptr(23),
			Categories:           []string{"Landscaping", "Services"},
			GovernmentRegistered: true,
			DistanceMiles:        ptr(2.1),
			Phone:                "(901) 555-0142",
			Source:               "Sample",
		},
		{
			Name:                 "Orange Mound Grounds Co.",
			Address:              "2572 Park Ave, Memphis, TN 38114",
			Rating:               ptr(4.6),
			Reviews:              ptr(41),
			Categories:           []string{"Lawn Services", "Tree Services"},
			GovernmentRegistered: true,
			DistanceMiles:        ptr(3.4),
			Phone:                "(901) 555-0178",
			Source:               "Sample",
		},
		{
			Name:          "LawnPro Franchise",
			Address:       "6150 Poplar Ave, Memphis, TN 38119",
			Rating:        ptr(4.3),
			Reviews:       ptr(310),
			Categories:    []string{"Landscaping"},
			IsChain:       true,
			DistanceMiles: ptr(8.9),
			Source:        "Sample",
		},
		{
			Name:          "Bluff City Catering",
			Address:       "95 S Main St, Memphis, TN 38103",
			Rating:        ptr(4.7),
			Reviews:       ptr(88),
			Categories:    []string{"Catering", "Food"},
			DistanceMiles: ptr(1.2),
			Source:        "Sample",
		},
		{
			Name:                 "Soulsville Office Supply",
			Address:              "926 E McLemore Ave, Memphis, TN 38106",
			Rating:               ptr(4.4),
			Reviews:              ptr(19),
			Categories:           []string{"Goods", "Office Supplies"},
			GovernmentRegistered: true,
			DistanceMiles:        ptr(2.8),
			Source:               "Sample",
		},
		{
			Name:          "Mid-South Facility Services",
			Address:       "3385 Airways Blvd, Memphis, TN 38116",
			Rating:        ptr(3.9),
			Reviews:       ptr(57),
			Categories:    []string{"Janitorial", "Services"},
			DistanceMiles: ptr(6.5),
			Source:        "Sample",
		},
		{
			Name:          "Big River Construction",
			Address:       "400 Monroe Ave, Memphis, TN 38103",
			Categories:    []string{"Construction", "Services"},
			DistanceMiles: ptr(1.5),
			Source:        "Sample",
		},
	}
}
