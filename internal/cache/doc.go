// Package cache keeps a persistent index of generated thumbnails.
//
// Thumbnails are expensive to produce, so when caching is enabled they are
// written under the cache directory and indexed by a key derived from the
// source file's path, size, modification time and the target height. A
// restarted server finds them again instead of resizing every image anew.
// Key features:
//   - One JSON entry file per thumbnail, written atomically
//   - TTL expiration with Prune removing both entry and thumbnail
//   - SHA256-based keys, so a changed source file never hits a stale entry
package cache
