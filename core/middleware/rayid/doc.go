// Package rayid assigns a unique ray id to every request for log correlation.
package rayid
