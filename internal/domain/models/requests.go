package models

// Request payloads validated by internal/validation before any store access.

type CreateBookingRequest struct {
	Name         string  `json:"name" validate:"required,nonblank,max=100"`
	Email        string  `json:"email" validate:"required,email,max=255"`
	Company      *string `json:"company" validate:"omitempty,max=100"`
	Phone        *string `json:"phone" validate:"omitempty,max=20"`
	Message      *string `json:"message" validate:"omitempty,max=2000"`
	SelectedDate string  `json:"selected_date" validate:"required,isodate,notpast"`
	SelectedTime string  `json:"selected_time" validate:"required,nonblank,max=20"`
	Timezone     *string `json:"timezone" validate:"omitempty,max=64"`
}

type UpdateBookingRequest struct {
	Status             *string `json:"status" validate:"omitempty,oneof=pending confirmed completed cancelled rescheduled"`
	SelectedDate       *string `json:"selected_date" validate:"omitempty,isodate"`
	SelectedTime       *string `json:"selected_time" validate:"omitempty,nonblank,max=20"`
	Notes              *string `json:"notes" validate:"omitempty,max=5000"`
	CancellationReason *string `json:"cancellation_reason" validate:"omitempty,max=1000"`
	ConfirmationSent   *bool   `json:"confirmation_sent"`
	ReminderSent       *bool   `json:"reminder_sent"`
}

type CancelBookingRequest struct {
	Token  string  `json:"token" validate:"required,uuid"`
	Reason *string `json:"reason" validate:"omitempty,max=1000"`
}

type RescheduleBookingRequest struct {
	Token   string  `json:"token" validate:"required,uuid"`
	NewDate string  `json:"new_date" validate:"required,isodate,notpast"`
	NewTime string  `json:"new_time" validate:"required,nonblank,max=20"`
	Reason  *string `json:"reason" validate:"omitempty,max=1000"`
}

// TriggerEmailRequest asks the automation service to draft and send an email
// about a booking, guided by an optional free-form prompt.
type TriggerEmailRequest struct {
	BookingID string  `json:"booking_id" validate:"required,uuid"`
	EmailType string  `json:"email_type" validate:"required,oneof=confirmation reminder follow_up custom"`
	Subject   *string `json:"subject" validate:"omitempty,max=255"`
	Prompt    *string `json:"prompt" validate:"omitempty,max=4000"`
}

type BlogRequest struct {
	Title         string   `json:"title" validate:"required,nonblank,max=255"`
	Slug          string   `json:"slug" validate:"omitempty,slug,max=255"`
	Content       string   `json:"content" validate:"required,nonblank"`
	Excerpt       string   `json:"excerpt" validate:"max=500"`
	Status        string   `json:"status" validate:"omitempty,oneof=draft published"`
	Author        string   `json:"author" validate:"max=255"`
	AuthorEmail   *string  `json:"author_email" validate:"omitempty,email"`
	Category      string   `json:"category" validate:"max=100"`
	Tags          []string `json:"tags" validate:"max=20,dive,nonblank,max=50"`
	FeaturedImage *string  `json:"featured_image" validate:"omitempty,max=1024"`
}

type CaseStudyRequest struct {
	Title         string  `json:"title" validate:"required,nonblank,max=255"`
	Slug          string  `json:"slug" validate:"omitempty,slug,max=255"`
	Client        string  `json:"client" validate:"max=255"`
	Industry      string  `json:"industry" validate:"max=100"`
	ServiceType   string  `json:"service_type" validate:"max=100"`
	Challenge     string  `json:"challenge"`
	Solution      string  `json:"solution"`
	Results       string  `json:"results"`
	Content       string  `json:"content" validate:"required,nonblank"`
	Excerpt       string  `json:"excerpt" validate:"max=500"`
	Status        string  `json:"status" validate:"omitempty,oneof=draft published"`
	Author        string  `json:"author" validate:"max=255"`
	FeaturedImage *string `json:"featured_image" validate:"omitempty,max=1024"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyTokenRequest struct {
	Token string `json:"token" form:"token" validate:"required,uuid"`
}
