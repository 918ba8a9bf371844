// Package reconcile is the identity and data reconciliation core. It keeps
// three independently failing stores in agreement: the hosted identity
// provider (password-verification oracle), the remote user directory
// (replication source of truth), and the local account cache (authoritative
// for authorization).
//
// The package exposes three coordinators:
//
//   - Authenticator: login with ghost-account detection and repair.
//   - Deleter: multi-store account deletion with per-step outcomes.
//   - Replicator: one-way directory → cache replication with a
//     change-triggered re-sync channel.
//
// No operation here is atomic across stores; every step commits
// independently and the residual states are part of the public contract.
package reconcile
