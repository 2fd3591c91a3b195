// Package loader registers application features and mounts their routes.
package loader
