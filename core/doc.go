// Package core contains the custody domain: the collateral registry, the
// claim ledger, the vault and the service that deploys and wires them.
// Adapters and stores depend on this package; core depends on none of them.
package core
