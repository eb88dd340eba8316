// Command blobserver serves a store of source images over HTTP, for
// touchicon instances configured with a "dino" blob store.
//
// Valid requests are GETs and PUTs to paths of the form "/icon.4f2a9c.png",
// that is, slash followed by the path-escaped key to GET or PUT. Requests for
// other verbs will return 400.
//
// If a key is not found, GETs return 404 with no body, which the client
// propagates as storage.ErrNotFound. Any other error on the GET path returns
// 500 and the textual error message in the response body.
//
// Uploading an asset and its manifest entry is a matter of two commands:
//
//	curl -T icon.png http://localhost:3003/icon.4f2a9c.png
//	echo '{"icon.png": "icon.4f2a9c.png"}' > manifest.json
package main // import "github.com/nicolagi/touchicon/cmd/blobserver"
