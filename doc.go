// Package sptzx provides an ephemeral object relay with signed, expiring
// retrieval links.
//
// Clients deposit a blob and receive a link that carries the object id, an
// expiry timestamp and an HMAC-SHA256 signature over both. The object is
// unreachable once the link expires and is physically removed by a
// background sweep once its lifetime is over.
//
// # Key Components
//
//   - LinkAuthenticator: signs and verifies (id, expiry) pairs with a single static secret
//   - ObjectStore: time-bounded, concurrency-safe object store over a Medium
//   - Medium: minimal byte storage capability (memory, filesystem, sqlite, postgres, redis)
//   - Sweeper: periodic eviction of expired objects
//   - Relay: upload/download use cases combining the store and the authenticator
//
// # Example Usage
//
//	auth, err := sptzx.NewLinkAuthenticator([]byte(secret))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store, err := sptzx.NewObjectStore(memory.New(), sptzx.StoreConfig{MaxPayloadSize: 1 << 20})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	relay, err := sptzx.NewRelay(store, auth, sptzx.RelayConfig{Lifetime: 5 * time.Minute})
//
//	// Deposit an object and get a signed link back
//	uploaded, err := relay.Upload(ctx, sptzx.UploadObject{Name: "a.png", Data: data})
//
//	// Resolve a presented link
//	rec, data, err := relay.Download(ctx, sptzx.LinkParams{ID: id, Expires: exp, Signature: sig})
//
// Run a Sweeper alongside the relay to reclaim storage:
//
//	sweeper, _ := sptzx.NewSweeper(store, sptzx.SweeperConfig{Interval: time.Minute})
//	go sweeper.Run(ctx)
//
// See the http package for the REST adapter and the memory, filesystem,
// database and redisstore packages for Medium implementations.
package sptzx
