package domain

import "time"

const (
	CategoryMissingPerson = "Missing Person"
	CategoryCrime         = "Crime"
	CategoryAccident      = "Accident"
	CategoryOther         = "Other"

	StatusActive   = "Active"
	StatusResolved = "Resolved"
	StatusClosed   = "Closed"
)

var (
	ReportCategories = []string{CategoryMissingPerson, CategoryCrime, CategoryAccident, CategoryOther}
	ReportStatuses   = []string{StatusActive, StatusResolved, StatusClosed}
)

// Report incident report. Its responses are the Response rows pointing at
// it; they are attached for reads only.
type Report struct {
	ID            string       `json:"id"`
	UserID        string       `json:"-"`
	User          *UserSummary `json:"user"`
	Title         string       `json:"title,omitempty"`
	Name          string       `json:"name,omitempty"`
	Age           string       `json:"age,omitempty"`
	LastSeen      string       `json:"lastSeen,omitempty"`
	ContactNumber string       `json:"contactNumber,omitempty"`
	Description   string       `json:"description"`
	Location      string       `json:"location"`
	Category      string       `json:"category"`
	Status        string       `json:"status"`
	Images        []string     `json:"images"`
	Responses     []*Response  `json:"responses"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// Response reply posted on a report.
type Response struct {
	ID        string       `json:"id"`
	ReportID  string       `json:"report"`
	UserID    string       `json:"-"`
	User      *UserSummary `json:"user"`
	Content   string       `json:"content"`
	Images    []string     `json:"images"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// ReportFilter list filter; empty fields do not filter.
type ReportFilter struct {
	Status   string
	Category string
	Search   string // case-insensitive match on title or description
}

// ReportPatch partial update; empty strings and nil slices leave a field unchanged.
type ReportPatch struct {
	Title         string   `json:"title"`
	Name          string   `json:"name"`
	Age           string   `json:"age"`
	LastSeen      string   `json:"lastSeen"`
	ContactNumber string   `json:"contactNumber"`
	Description   string   `json:"description"`
	Location      string   `json:"location"`
	Category      string   `json:"category"`
	Status        string   `json:"status"`
	Images        []string `json:"images"`
}

func (p ReportPatch) Apply(r *Report) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&r.Title, p.Title)
	set(&r.Name, p.Name)
	set(&r.Age, p.Age)
	set(&r.LastSeen, p.LastSeen)
	set(&r.ContactNumber, p.ContactNumber)
	set(&r.Description, p.Description)
	set(&r.Location, p.Location)
	set(&r.Category, p.Category)
	set(&r.Status, p.Status)
	if p.Images != nil {
		r.Images = p.Images
	}
}

// Activity one entry of a user's activity feed.
type Activity struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	Status      string    `json:"status"`
}

// UserStats counts of a user's own reports and responses.
type UserStats struct {
	TotalReports    int `json:"totalReports"`
	TotalResponses  int `json:"totalResponses"`
	RecentReports   int `json:"recentReports"`
	RecentResponses int `json:"recentResponses"`
	TotalActivity   int `json:"totalActivity"`
	RecentActivity  int `json:"recentActivity"`
}

// Identity resolved from a bearer token.
type Identity struct {
	ID   string
	Role string
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// CanModify owner or admin may mutate a document.
func (i Identity) CanModify(ownerID string) bool {
	return i.IsAdmin() || (ownerID != "" && i.ID == ownerID)
}
