// Command devnode serves an in-memory ceremony node for local runs of the
// client. It speaks the node's JSON-RPC dialect on POST / and hands out
// generated flips for both sessions.
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - The ceremony starts --start-in after launch and uses the --short and
//     --long session durations; dna_epoch and dna_ceremonyIntervals report
//     them so the client needs no timing config.
//   - --address registers a Verified identity so key distribution proceeds.
//   - Broadcast transactions are mined after --mined-after receipt polls.
//   - Each request is logged with method, path, status and duration.
//
// The default listen address is :9009.
package main
