package main

// Prunes the Star Wars schema to what a small client app uses and prints the result in SDL.
// Note how Droid keeps "name" (declared by the Character interface and selected on it) even
// though no query selects name on a Droid directly.

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/diconium/schemapruner"
	"github.com/rs/zerolog"
)

const schema = `
"The root query object stores all the queries that can be made"
type Query {
	hero(episode: Episode = JEDI): Character
	human(id: ID!): Human
	droid(id: ID!): Droid
	starship(id: ID!): Starship
	reviews(episode: Episode!): [Review]
	search(text: String!): [SearchResult]
}
"Represents all the updates that can be made to the data"
type Mutation {
	createReview(episode: Episode, review: ReviewInput!): Review
}
enum Episode { NEWHOPE EMPIRE JEDI }
enum LengthUnit { METER FOOT }
scalar Time
"Represents a character (human or droid) in the Star Wars trilogy"
interface Character {
	id: ID!
	name: String!
	friends: [Character]
	friendsConnection(first: Int = -1, after: ID): FriendsConnection!
	appearsIn: [Episode]!
}
"An intelligent humanoid creature from Star Wars"
type Human implements Character {
	id: ID!
	name: String!
	homePlanet: String
	height(unit: LengthUnit = METER): Float
	mass: Float
	friends: [Character]
	friendsConnection(first: Int = -1, after: ID): FriendsConnection!
	appearsIn: [Episode]!
	starships: [Starship]
}
"A mobile, semi-autonomous machine from Star Wars"
type Droid implements Character {
	id: ID!
	name: String!
	friends: [Character]
	friendsConnection(first: Int = -1, after: ID): FriendsConnection!
	appearsIn: [Episode]!
	primaryFunction: String
}
"Machines for inter-planetary and inter-stellar travel"
type Starship { id: ID! name: String! length(unit: LengthUnit = METER): Float }
"One person's rating and review for a movie"
type Review { episode: Episode stars: Int! commentary: String time: Time }
"The input object sent when someone is creating a new review"
input ReviewInput { stars: Int! commentary: String time: Time favoriteColor: ColorInput }
input ColorInput { red: Int! green: Int! blue: Int! }
"A connection object for a character's friends"
type FriendsConnection { totalCount: Int edges: [FriendsEdge] friends: [Character] pageInfo: PageInfo! }
type FriendsEdge { cursor: ID! node: Character }
type PageInfo { startCursor: ID endCursor: ID hasNextPage: Boolean! }
union SearchResult = Human | Droid | Starship
`

// queries are the documents sent by the client app
var queries = []string{
	`query Hero($episode: Episode) {
		hero(episode: $episode) {
			name
			... on Human { height(unit: FOOT) starships { name } }
			... on Droid { primaryFunction }
		}
	}`,
	`{ search(text: "wing") { ... on Starship { name length } } }`,
	`mutation Review($review: ReviewInput!) { createReview(episode: JEDI, review: $review) { stars commentary } }`,
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)
	s, err := schemapruner.NewFromSDL(schema, schemapruner.Logger(logger))
	if err != nil {
		log.Fatalln(err)
	}
	if err := s.ProcessAll(context.Background(), queries); err != nil {
		log.Fatalln(err)
	}
	fmt.Println(s.PruneSDL())
}
