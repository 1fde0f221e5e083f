// Package panel serves a built editor front end from a directory.
//
// The API server mounts the handler under /editor/ when api.ui_dir is set.
// Paths without a file extension that do not exist fall back to index.html
// so client-side routes survive a reload. Missing assets (paths with an
// extension) are a plain 404.
//
// index.html is served with no-cache; hashed bundle files are left to the
// browser's normal caching.
package panel
