package model

import "time"

// DefaultProjectStatus is assigned when a project is created without a status.
const DefaultProjectStatus = "Not Started"

// Project groups tasks for a single owner. It corresponds to a row in
// the `projects` table and is also the API representation.
type Project struct {
	ID          uint64    `json:"id"`          // projects.id
	OwnerID     uint64    `json:"owner_id"`    // projects.owner_id
	Name        string    `json:"name"`        // projects.name
	Description *string   `json:"description"` // projects.description (nullable)
	Status      string    `json:"status"`      // projects.status
	StartDate   *Date     `json:"start_date"`  // projects.start_date (nullable)
	EndDate     *Date     `json:"end_date"`    // projects.end_date (nullable)
	CreatedAt   time.Time `json:"created_at"`  // projects.created_at
	UpdatedAt   time.Time `json:"updated_at"`  // projects.updated_at
}

// ProjectInput is the body accepted when creating a project.
type ProjectInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	StartDate   *Date   `json:"start_date"`
	EndDate     *Date   `json:"end_date"`
}

// ProjectPatch carries a partial update. Only fields present in the
// request body are applied.
type ProjectPatch struct {
	Name        Optional[string] `json:"name"`
	Description Optional[string] `json:"description"`
	Status      Optional[string] `json:"status"`
	StartDate   Optional[Date]   `json:"start_date"`
	EndDate     Optional[Date]   `json:"end_date"`
}
