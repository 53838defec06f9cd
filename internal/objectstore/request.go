package objectstore

import "time"

// Request is one of ListRequest, GetRequest or PutRequest.
type Request interface {
	operation() string
}

// Response is the matching *ListResponse, *GetResponse or *PutResponse.
type Response interface {
	response()
}

// ListRequest enumerates every object whose key starts with Prefix.
type ListRequest struct {
	Bucket string `json:"bucket,omitempty"`
	Prefix string `json:"prefix"`
}

// GetRequest fetches a single object.
type GetRequest struct {
	Bucket string `json:"bucket,omitempty"`
	Key    string `json:"key"`
}

// PutRequest stores a single object.
type PutRequest struct {
	Bucket      string `json:"bucket,omitempty"`
	Key         string `json:"key"`
	Body        []byte `json:"-"`
	ContentType string `json:"content_type,omitempty"`
}

func (ListRequest) operation() string { return "ListObjectsV2" }
func (GetRequest) operation() string  { return "GetObject" }
func (PutRequest) operation() string  { return "PutObject" }

// Object is a listing entry.
type Object struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ListResponse holds listing entries in directory traversal order.
type ListResponse struct {
	Contents []Object `json:"contents"`
}

// GetResponse carries the object body and its inferred content type.
type GetResponse struct {
	Body        []byte `json:"-"`
	ContentType string `json:"content_type"`
	StatusCode  int    `json:"status_code"`
}

// String returns the body as text.
func (r *GetResponse) String() string {
	return string(r.Body)
}

// PutResponse acknowledges a stored object.
type PutResponse struct {
	Path string `json:"path"`
}

func (*ListResponse) response() {}
func (*GetResponse) response()  {}
func (*PutResponse) response()  {}
