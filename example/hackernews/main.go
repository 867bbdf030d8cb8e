package main

// Runs a pruning server for a Hacker News clone schema. Try:
//
//	curl -d '{"queries": ["{ feed { url description } }"], "format": "sdl"}' http://localhost:8080/prune

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/diconium/schemapruner"
	"github.com/diconium/schemapruner/internal/server"
	"github.com/diconium/schemapruner/internal/upstream"
	"github.com/rs/zerolog"
)

const address = "localhost:8080"

const schema = `
type Query {
	feed(filter: String, skip: Int, take: Int, orderBy: LinkOrderByInput): [Link!]!
	link(id: ID!): Link
	me: User
}
type Mutation {
	post(url: String!, description: String!): Link!
	signup(email: String!, password: String!, name: String!): AuthPayload
	login(email: String!, password: String!): AuthPayload
	vote(linkId: ID!): Vote
}
type Link { id: ID! description: String! url: String! postedBy: User votes: [Vote!]! createdAt: String! }
type User { id: ID! name: String! email: String! links: [Link!]! }
type Vote { id: ID! link: Link! user: User! }
type AuthPayload { token: String user: User }
input LinkOrderByInput { description: Sort url: Sort createdAt: Sort }
enum Sort { asc desc }
`

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	s, err := schemapruner.NewFromSDL(schema)
	if err != nil {
		log.Fatalln(err)
	}
	introspection, err := schemapruner.EncodeSchema(s.Schema())
	if err != nil {
		log.Fatalln(err)
	}

	h := server.New(upstream.Static(introspection), server.Logger(logger), server.NoInlineSchema(true))
	http.Handle("/ws", h) // a websocket can't be hijacked through a TimeoutHandler
	http.Handle("/", http.TimeoutHandler(h, 15*time.Second, `{"errors":[{"message":"timeout"}]}`))

	logger.Info().Str("address", "http://"+address).Msg("starting server")
	if err := http.ListenAndServe(address, nil); err != nil {
		logger.Error().Err(err).Msg("stopping server")
	}
}
