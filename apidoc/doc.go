// Package apidoc builds OpenAPI 3.0 documents from documented HTTP handlers.
//
// Handlers are documented with endpoint.Describe and mounted on a
// gorilla/mux or go-chi router. Build walks the router and, for every
// documented method, runs the pipeline:
//
//  1. parameter fields are taken from endpoint.Meta.Parameters, or inferred
//     from Meta.Signature by the SignatureAdapter;
//  2. fields are grouped by request location (GroupFields);
//  3. every response descriptor is resolved to a schema and media type
//     (ResponseTable.Resolve);
//  4. the operation is assembled and inserted into the document under the
//     configured DuplicatePolicy.
//
// Usage:
//
//	b, err := apidoc.New(apidoc.Config{Title: "Status API"})
//	if err != nil {
//	    return err
//	}
//
//	doc, err := b.Build(apidoc.Mux(router))
//
// Endpoints can also be registered directly:
//
//	s := b.Start()
//	err := s.Register("/status", http.MethodGet, endpoint.Meta{
//	    Parameters: endpoint.Fields{
//	        endpoint.String("text", endpoint.Default("Hello AutoMD")),
//	    },
//	    Responses: map[int]any{http.StatusOK: responses.Text("")},
//	})
//	doc := s.Document()
//
// # Parameter Styles
//
// StyleExpanded (the default) writes one Parameter Object per query, path,
// header and cookie field and an application/json request body for json
// fields. StyleNested writes a single query parameter named "parameters"
// referencing a composite component with one property per location.
//
// # Errors
//
// Failures are reported per endpoint as *EndpointError wrapping one of the
// package sentinel errors:
//
//	var ee *apidoc.EndpointError
//	if errors.As(err, &ee) && errors.Is(err, apidoc.ErrUnresolvableResponse) {
//	    log.Printf("%s %s: response cannot be documented", ee.Method, ee.Path)
//	}
package apidoc
