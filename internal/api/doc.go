// Package api provides an HTTP client for the rowfinder backend.
//
// # Endpoints
//
//   - GET    /api/files/            list uploaded files
//   - POST   /api/files/select/     make a file active, returns its columns
//   - DELETE /api/files/{id}/       delete a file and its rows
//   - GET    /api/columns/          columns of the active file
//   - POST   /api/upload/           multipart upload (field "file")
//   - GET    /api/upload-progress/  server-side upload progress
//   - POST   /api/search/           one page of search results
//   - GET    /api/suggestions/?q=   autocomplete candidates
//
// # Decoding
//
// The backend's response shapes drifted across revisions: columns arrive as
// arrays or as semicolon-delimited strings, rows as flat objects or wrapped in
// {"data": ...}, suggestions as objects or bare strings. Responses are
// therefore read with gjson rather than decoded into fixed structs, and row
// values of any JSON type are kept as strings in the order the server sent
// them.
//
// # Errors
//
// Non-2xx responses return *APIError carrying the server's "error" text when
// present. Transport failures are wrapped as "execute request: ..." and
// invalid JSON as "decode response: ...". Message extracts the text to show a
// user.
//
// Every request sets Accept: application/json, a rowfinder/<version>
// User-Agent and a fresh X-Request-ID.
package api
