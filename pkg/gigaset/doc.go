// Package gigaset is a client for the Gigaset Elements cloud: base
// stations, sensors, events and device commands of a smart-home account.
//
// Quick start:
//
//	c, err := gigaset.New("user@example.com", "secret",
//	    gigaset.WithAuthorizeInterval(6*time.Hour))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	bs, err := c.BaseStations(ctx)
//	events, err := c.AllEvents(ctx, gigaset.Time(since), gigaset.Timestamp{}, 0)
//
// Authorization happens on demand: every call that needs a session logs in
// first when the interval has elapsed, and once more if the cloud answers
// 401. A Client owns its cookies and is safe for concurrent use. Create one
// per account and reuse it.
package gigaset
