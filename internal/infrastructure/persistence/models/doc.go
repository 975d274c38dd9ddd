// Package models contains the GORM persistence models and their mappings to
// and from the domain entities. Models never leak outside the persistence
// layer; repositories convert at the boundary.
package models
