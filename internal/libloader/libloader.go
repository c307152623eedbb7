// Package libloader implements the §4.J `load-fn` contract over the
// network: a remote library service is asked for a namespace's source by
// name and returns it (or reports it has nothing for that name). Grounded
// in the teacher's builtins_grpc.go (grpcConnect/grpcLoadProto/grpcInvoke
// using jhump/protoreflect dynamic messages over a plain grpc.ClientConn),
// generalized from a user-facing `grpcInvoke` builtin to a single fixed RPC
// wired directly into rt.LoadFn.
package libloader

import (
	"context"
	"fmt"
	"time"

	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/corvidlang/corvid/internal/rt"
)

// librarySchema describes the FetchLibrary RPC inline, rather than
// depending on a pre-generated .pb.go pair: protoparse compiles it at
// dial time and dynamic.Message marshals against the result, exactly as
// the teacher's grpcLoadProto/grpcInvoke pair do for user-supplied .proto
// files.
const librarySchema = `
syntax = "proto3";
package corvid.libloader;

message FetchLibraryRequest {
  string namespace = 1;
}

message FetchLibraryResponse {
  bool found = 1;
  string file = 2;
  string source = 3;
}

service LibraryService {
  rpc FetchLibrary(FetchLibraryRequest) returns (FetchLibraryResponse);
}
`

// RemoteLoader dials a gRPC library service and answers rt.LoadFn requests
// against it over the FetchLibrary RPC.
type RemoteLoader struct {
	conn    *grpc.ClientConn
	reqDesc *dynamic.Message
	timeout time.Duration
}

// Dial connects to addr and parses the embedded schema, failing fast if
// either step fails rather than deferring the error to the first `require`.
func Dial(addr string) (*RemoteLoader, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dialing library service at %s: %w", addr, err)
	}
	parser := protoparse.Parser{Accessor: protoparse.FileContentsFromMap(map[string]string{
		"corvid_libloader.proto": librarySchema,
	})}
	fds, err := parser.ParseFiles("corvid_libloader.proto")
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("parsing library loader schema: %w", err)
	}
	reqMsgDesc := fds[0].FindMessage("corvid.libloader.FetchLibraryRequest")
	if reqMsgDesc == nil {
		conn.Close()
		return nil, fmt.Errorf("FetchLibraryRequest not found in embedded schema")
	}
	return &RemoteLoader{
		conn:    conn,
		reqDesc: dynamic.NewMessage(reqMsgDesc),
		timeout: 10 * time.Second,
	}, nil
}

// Close releases the underlying connection.
func (r *RemoteLoader) Close() error { return r.conn.Close() }

// LoadFn adapts RemoteLoader to the rt.LoadFn signature `require` calls.
func (r *RemoteLoader) LoadFn(req rt.LoadRequest) (*rt.LoadResult, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	in := dynamic.NewMessage(r.reqDesc.GetMessageDescriptor())
	in.SetFieldByName("namespace", req.Namespace)

	respDesc := r.reqDesc.GetMessageDescriptor().GetFile().FindMessage("corvid.libloader.FetchLibraryResponse")
	if respDesc == nil {
		return nil, false
	}
	out := dynamic.NewMessage(respDesc)
	err := r.conn.Invoke(ctx, "/corvid.libloader.LibraryService/FetchLibrary", in, out)
	if err != nil {
		return nil, false
	}
	found, _ := out.TryGetFieldByName("found")
	if b, ok := found.(bool); !ok || !b {
		return nil, false
	}
	file, _ := out.TryGetFieldByName("file")
	source, _ := out.TryGetFieldByName("source")
	fileStr, _ := file.(string)
	sourceStr, _ := source.(string)
	return &rt.LoadResult{File: fileStr, Source: sourceStr}, true
}

// StaticLoader is an in-memory rt.LoadFn for tests and small embedded
// scripts that don't need a network round trip.
type StaticLoader map[string]rt.LoadResult

// LoadFn implements rt.LoadFn over the in-memory map.
func (s StaticLoader) LoadFn(req rt.LoadRequest) (*rt.LoadResult, bool) {
	res, ok := s[req.Namespace]
	if !ok {
		return nil, false
	}
	return &res, true
}
