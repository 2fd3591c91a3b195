// Package database establishes the MySQL connection for the relational
// catalog store.
package database
