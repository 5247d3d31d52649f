// Package broadcast tells other processes that an import was applied.
//
// Every process keeps a resolver read cache. An import made by another replica
// or by the CLI publishes its namespace on a redis channel, and the server
// drops its cached lookups for that namespace when the message arrives.
// Without redis there is nothing to broadcast and the server only sees its own
// imports immediately.
package broadcast
