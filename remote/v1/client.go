package v1

type Client struct {
	Transport   *Transport
	Submissions *SubmissionEndpoint
}

// NewClient initializes the aggregation-service API client
func NewClient(baseURL string, tokens TokenProvider) *Client {
	t := NewTransport(baseURL, tokens)
	return &Client{
		Transport:   t,
		Submissions: &SubmissionEndpoint{transport: t},
	}
}
