package dto

// ShortlistEntry is one creator proposed for a campaign
type ShortlistEntry struct {
	CreatorID uint `json:"creator_id" validate:"required"`
}

// UploadShortlistRequest carries an admin's shortlist for a campaign. Either
// the JSON entries or an XLSX upload feeds this request.
type UploadShortlistRequest struct {
	AdminID uint             `json:"-"`
	UUID    string           `json:"-" validate:"required,uuid4"`
	Entries []ShortlistEntry `json:"entries" validate:"required,min=1,dive"`
}

// UploadShortlistResponse reports how the shortlist upload landed. Creators
// already shortlisted on the campaign are counted as duplicates, not errors.
type UploadShortlistResponse struct {
	Message        string `json:"message"`
	CreatedCount   int    `json:"created_count"`
	DuplicateCount int    `json:"duplicate_count"`
	UnknownCount   int    `json:"unknown_count"`
	CampaignPhase  string `json:"campaign_phase"`
}
