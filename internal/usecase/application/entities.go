package application

import (
	appDomain "civic-backoffice/internal/domain/application"
)

type CreateInput struct {
	WardCode     string
	ApplicantRef string
	Payload      appDomain.Payload
}

type Page struct {
	Items    []appDomain.Application `json:"items"`
	Total    int64                   `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"page_size"`
}
