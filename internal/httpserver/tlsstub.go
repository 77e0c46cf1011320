package httpserver

import "context"

// HandleTLSHandshake is a placeholder for performing the TLS handshake
// before handing a connection to the per-connection loop. It is never
// called by Serve; it documents the steps a real handshake would take
// without implementing any of them.
//
// As the server:
//  1. Read what the client sends.
//  2. Verify what it sent: client hello, protocol version, client
//     random, list of cipher suites.
//  3. Generate the server random (can happen as soon as the connection
//     is established).
//  4. Receive the client hello (including params and cipher suites),
//     derive the master secret.
//  5. Send the server hello (cert, digital signature, server random,
//     chosen cipher suite).
//  6. Send server finished, then wait for client finished.
func HandleTLSHandshake(ctx context.Context) error {
	return nil
}
