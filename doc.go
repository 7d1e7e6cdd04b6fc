// Package identity implements a user identity backend: credential hashing,
// stateless JWT issuance and validation, request-level authorization, a
// cache-aside read path over the canonical user store, and an asynchronous
// deletion pipeline that performs post-delete cleanup.
//
// Layout:
//   - The root package holds the domain core: the User model and repository,
//     the IdentityService orchestrator, the password hasher, the token
//     service, the authorization policy, and the boundary validators.
//   - cache/ implements UserCache on Redis.
//   - deletion/ implements the deletion pipeline on asynq (publish with a
//     synchronous fallback, bounded-concurrency consumers, retry and
//     archive-on-exhaustion as the dead-letter terminal).
//   - config/ loads runtime configuration from the environment.
//
// Tokens are self-contained and HMAC-signed; validity is a function of
// signature and expiry alone. There is no server-side token state, so logout
// and revocation are impossible by construction. Re-authentication is the
// only recovery after expiry.
package identity
