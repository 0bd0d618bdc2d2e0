// Package domain defines campaign selection types and ports
package domain

import "triggerbot/internal/core/keyword"

// Campaign is an active campaign as stored; Rules is the raw rule document
type Campaign struct {
	ID       int64
	Name     string
	Priority int
	Rules    []byte
	Active   bool
}

// Detection is the campaign an inbound message selected
type Detection struct {
	CampaignID     int64
	CampaignName   string
	MatchedKeyword string
	MatchType      keyword.MatchType
	Priority       int
}
