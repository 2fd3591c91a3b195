// Package catalog serves the commerce catalog read path: product detail by
// identifier and brand-scoped, sort-ordered product lists, both through a
// read-through cache backed by the relational store.
package catalog
