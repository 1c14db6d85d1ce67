// Package aggregates owns transaction boundaries for writes that span several tables.
// The intake persister runs one transaction per program and one savepoint per child row.
package aggregates
