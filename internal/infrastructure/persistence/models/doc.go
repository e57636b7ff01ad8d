// Package models holds the GORM persistence models. Domain aggregates never
// carry gorm tags; each model converts with ToDomain and a FromDomain
// constructor so the schema can change without touching the domain.
package models
