package domain

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Application is a volunteer application submitted by a user. Status moves
// pending -> approved|rejected through admin review; approval promotes the
// applicant's role to volunteer, rejection resets it to user.
type Application struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Location  string    `json:"location"`
	Expertise string    `json:"expertise"`
	Reason    string    `json:"reason"`
	Image     string    `json:"image,omitempty"`
	CNIC      string    `json:"cnic"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// ApplicationWithUser joins an application with its applicant's identity for
// the admin review views.
type ApplicationWithUser struct {
	Application
	Applicant UserSummary `json:"applicant"`
}
