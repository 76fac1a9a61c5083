/*
Package session serializes access to calculator sessions.

A Manager wraps a ports.StateStore and guarantees that read-modify-write cycles
on one session never interleave: in-process through reference-counted mutexes,
and across replicas through an optional ports.DistributedLocker.
*/
package session
