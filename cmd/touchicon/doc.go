// Command touchicon serves Apple touch icons, resized on demand from a
// single source image.
//
// Requests for "/apple-touch-icon.png", "/apple-touch-icon-120x120.png",
// "/apple-touch-icon-152x152-precomposed.png" and so on are answered with a
// PNG of the requested size. Sizes must be square and between 1 and 500
// pixels. The source image is either built into the binary, fetched from a
// URL, or read from a blob store (disk, bolt, S3 or a blobserver) under the
// key an asset manifest assigns to it. Rendered icons are cached for the
// duration of their s-maxage.
//
// The configuration file is relaxed JSON, for example:
//
//	{
//		listen: ":8080"
//		debug: true
//		cache: {type: "bolt", path: "$HOME/lib/touchicon/cache.db"}
//		source: {
//			type: "blobstore"
//			manifest: "$HOME/lib/touchicon/manifest.json"
//			name: "icon.png"
//			blobs: {type: "s3", profile: "icons", region: "eu-west-2", bucket: "static", cache_dir: "$HOME/lib/touchicon/blobs"}
//		}
//	}
package main // import "github.com/nicolagi/touchicon/cmd/touchicon"
