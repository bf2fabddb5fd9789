// Package domain contains the core business entities and value objects of the
// HanXue learning API: users, vocabulary items, per-item review progress and the
// per-user streak and XP counters. It has no dependency on storage or transport.
package domain
