// Package upstream obtains the introspection result of the schema to prune, from a GraphQL
// server or a file, optionally caching it.
package upstream

// query.go has the standard introspection query, extended for specifiedByURL and input value deprecation

// IntrospectionQuery is sent to the upstream server. The TypeRef fragment follows 8 levels of
// LIST/NON_NULL wrapping which is more than any real schema needs (eg [[Int!]!]! is 5).
const IntrospectionQuery = `
query IntrospectionQuery {
	__schema {
		description
		queryType { name }
		mutationType { name }
		subscriptionType { name }
		types {
			...FullType
		}
		directives {
			name
			description
			isRepeatable
			locations
			args(includeDeprecated: true) {
				...InputValue
			}
		}
	}
}
fragment FullType on __Type {
	kind
	name
	description
	specifiedByURL
	fields(includeDeprecated: true) {
		name
		description
		args(includeDeprecated: true) {
			...InputValue
		}
		type {
			...TypeRef
		}
		isDeprecated
		deprecationReason
	}
	inputFields(includeDeprecated: true) {
		...InputValue
	}
	interfaces {
		...TypeRef
	}
	enumValues(includeDeprecated: true) {
		name
		description
		isDeprecated
		deprecationReason
	}
	possibleTypes {
		...TypeRef
	}
}
fragment InputValue on __InputValue {
	name
	description
	type { ...TypeRef }
	defaultValue
	isDeprecated
	deprecationReason
}
fragment TypeRef on __Type {
	kind
	name
	ofType {
		kind
		name
		ofType {
			kind
			name
			ofType {
				kind
				name
				ofType {
					kind
					name
					ofType {
						kind
						name
						ofType {
							kind
							name
							ofType {
								kind
								name
							}
						}
					}
				}
			}
		}
	}
}`
