// Package endpoint declares the documentation automd reads from HTTP
// handlers: parameter fields with their request location, response
// descriptors per status code, and free text such as summary and tags.
//
// A handler is documented when it implements Documented, usually by being
// wrapped with Describe. Resource groups one handler per method on a path.
package endpoint
