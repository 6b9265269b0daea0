// Package stealth implements dual-key stealth addresses.
//
// A receiver holds an Identity made of a spend keypair and a view keypair and
// publishes the public half as a MetaAddress. A sender calls Initiate on the
// MetaAddress to derive a fresh one-time public key P together with an
// ephemeral public key R, and publishes both alongside the payment. Nobody
// but the receiver can link P to the MetaAddress.
//
// The receiver runs every published (R, P) pair through Recover, or a whole
// batch through a Scanner. A match yields the one-time secret scalar x with
// x·G = P, which a Signer turns into a signing key for the ledger:
//
//	P' = spend_pk + H_s(view_sk·R)·G        // matches when P' == P
//	x  = spend_sk + H_s(view_sk·R)
//
// Secret scalars are overwritten in place by Wipe/Zero. Callers should defer
// those calls as soon as the material is acquired.
package stealth
