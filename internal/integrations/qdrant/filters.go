// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-08-11
// Last Modified: 2026-08-14

package qdrant

import (
	pb "github.com/qdrant/go-client/qdrant"
)

// PublicOnly matches points that are not marked private. Points with no
// "private" key at all also match, which keeps legacy points written before
// visibility tagging searchable.
func PublicOnly() *Filter {
	return &Filter{
		MustNot: []*pb.Condition{
			privateTrue(),
		},
	}
}

// VisibleTo matches points the given author is allowed to see: every public
// point plus private points that list the author in their "authors" payload.
func VisibleTo(author string) *Filter {
	return &Filter{
		Should: []*pb.Condition{
			// Not private (missing key counts as public)
			{
				ConditionOneOf: &pb.Condition_Filter{
					Filter: &pb.Filter{
						MustNot: []*pb.Condition{
							privateTrue(),
						},
					},
				},
			},
			// Private but owned by this author
			{
				ConditionOneOf: &pb.Condition_Field{
					Field: &pb.FieldCondition{
						Key: "authors",
						Match: &pb.Match{
							MatchValue: &pb.Match_Keyword{Keyword: author},
						},
					},
				},
			},
		},
	}
}

func privateTrue() *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key: "private",
				Match: &pb.Match{
					MatchValue: &pb.Match_Boolean{Boolean: true},
				},
			},
		},
	}
}
