// Package discovery implements mDNS announcement and discovery of wifid
// instances.
//
// A running daemon announces itself as a "_wifid._tcp" service once its
// station interface has an address, carrying the device id, connectivity
// state and version in TXT records. wifictl browses for the same service
// when no --server address is given.
package discovery
