package bcon_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reoring/bcon"
)

func TestDumpJSON(t *testing.T) {
	oid, _ := primitive.ObjectIDFromHex("5f1d8a3b9c2e4a0011223344")
	cases := []struct {
		name string
		s    bcon.Stream
		want string
	}{
		{"scalars", bcon.New("a", "b", "n", bcon.Int32(1), "l", bcon.Int64(2), "d", bcon.Double(1), "f", bcon.Double(1.5), "t", bcon.Bool(true), "z", bcon.Null()),
			`{"a":"b","n":1,"l":2,"d":1.0,"f":1.5,"t":true,"z":null}`},
		{"special doubles", bcon.New("n", bcon.Double(math.NaN()), "i", bcon.Double(math.Inf(-1))),
			`{"n":{"$numberDouble":"NaN"},"i":{"$numberDouble":"-Infinity"}}`},
		{"oid", bcon.New("_id", bcon.ObjectID(oid)), `{"_id":{"$oid":"5f1d8a3b9c2e4a0011223344"}}`},
		{"binary", bcon.New("b", bcon.BinaryOf(0, []byte{1, 2})), `{"b":{"$binary":{"base64":"AQI=","subType":"00"}}}`},
		{"timestamp", bcon.New("ts", bcon.TimestampOf(10, 3)), `{"ts":{"$timestamp":{"t":10,"i":3}}}`},
		{"datetime", bcon.New("at", bcon.Typed(bcon.KindDateTime, int64(1700000000123))), `{"at":{"$date":"2023-11-14T22:13:20.123Z"}}`},
		{"datetime before epoch", bcon.New("at", bcon.Typed(bcon.KindDateTime, int64(-1))), `{"at":{"$date":{"$numberLong":"-1"}}}`},
		{"keys", bcon.New("lo", bcon.MinKey(), "hi", bcon.MaxKey(), "u", bcon.Undefined()), `{"lo":{"$minKey":1},"hi":{"$maxKey":1},"u":{"$undefined":true}}`},
		{"regex", bcon.New("r", bcon.RegexOf("^a", "i")), `{"r":{"$regularExpression":{"pattern":"^a","options":"i"}}}`},
		{"code", bcon.New("c", bcon.Code("f()"), "s", bcon.Symbol("x")), `{"c":{"$code":"f()"},"s":{"$symbol":"x"}}`},
		{"codewscope", bcon.New("c", bcon.CodeWScope("f()", "x", bcon.Int32(1))), `{"c":{"$code":"f()","$scope":{"x":1}}}`},
		{"dbpointer", bcon.New("p", bcon.DBPointerOf("db.c", oid)), `{"p":{"$dbPointer":{"$ref":"db.c","$id":{"$oid":"5f1d8a3b9c2e4a0011223344"}}}}`},
		{"nested", bcon.New("a", bcon.Doc("b", bcon.Array("x", bcon.Int32(2)))), `{"a":{"b":["x",2]}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := bcon.DumpJSON(tc.s)
			if err != nil {
				t.Fatalf("dump: %v", err)
			}
			if got != tc.want {
				t.Fatalf("json mismatch\n got: %s\nwant: %s", got, tc.want)
			}
		})
	}
}

func TestDumpJSON_MatchesRelaxedExtJSON(t *testing.T) {
	at := time.UnixMilli(1700000000123).UTC()
	got, err := bcon.DumpJSON(bcon.New("d", bcon.DateTime(at), "x", bcon.Double(1.5)))
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	want, err := bson.MarshalExtJSON(bson.D{{Key: "d", Value: primitive.NewDateTimeFromTime(at)}, {Key: "x", Value: 1.5}}, false, false)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got != string(want) {
		t.Fatalf("json mismatch\n got: %s\nwant: %s", got, want)
	}
	if got != `{"d":{"$date":"2023-11-14T22:13:20.123Z"},"x":1.5}` {
		t.Fatalf("unexpected relaxed form: %s", got)
	}
}

func TestDumpArrayJSON(t *testing.T) {
	got, err := bcon.DumpArrayJSON(bcon.New("a", bcon.Int32(1)))
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if want := `["a",1]`; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}

	got, err = bcon.DumpArrayJSON(bcon.New(bcon.Doc("a", bcon.Array()), bcon.Int64(-3)))
	if err != nil {
		t.Fatalf("dump nested: %v", err)
	}
	if want := `[{"a":[]},-3]`; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestDumpJSON_PropagatesConvertError(t *testing.T) {
	_, err := bcon.DumpJSON(bcon.New("dangling"))
	var ce *bcon.ConvertError
	if !errors.As(err, &ce) || ce.Code() != bcon.CodeDanglingKey {
		t.Fatalf("expected dangling_key ConvertError, got %v", err)
	}
}
