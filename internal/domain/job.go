package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExportJob records one run of the export pipeline.
type ExportJob struct {
	ID        uuid.UUID  `json:"id"`
	ResumeID  *uuid.UUID `json:"resume_id,omitempty"`
	OwnerID   string     `json:"owner_id"`
	State     string     `json:"state"`
	FileName  string     `json:"file_name"`
	Pages     int        `json:"pages"`
	Bytes     int        `json:"bytes"`
	Location  string     `json:"location,omitempty"`
	Message   string     `json:"message,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
