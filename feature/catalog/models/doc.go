// Package models defines the relational rows for the catalog domain.
package models
