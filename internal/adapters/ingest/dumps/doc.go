// Package dumps reads Wikimedia hourly pageviews dumps
//
// Design choices:
// - Files are addressed by their canonical name (pageviews-YYYYMMDD-HH0000.gz);
//   the remote path YYYY/YYYY-MM/ is derived from the name.
// - HTTP fetches retry 5xx, 429 and network errors with exponential backoff; 404 is final.
// - The cache is download-once: a file on disk is never fetched again.
// - Readers sniff the gzip magic so plain text files stream too, strip only the
//   trailing \n of each line and reject invalid UTF-8.
package dumps
