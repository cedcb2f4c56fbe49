package tasks

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/news-digest/app/feed"
)

var _ TaskInterface = (*ReadFeedTask)(nil)

type ReadFeedTask struct {
	Task
	Source feed.Source
	Items  []feed.Item
	reader FeedReader
}

func NewReadFeedTask(source feed.Source, reader FeedReader) *ReadFeedTask {
	return &ReadFeedTask{
		Task:   NewTask(TaskTypeReadFeed, source.Name),
		Source: source,
		reader: reader,
	}
}

func (t *ReadFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	items, err := t.reader.Read(ctx, t.Source)
	if err != nil {
		return err
	}
	t.Items = items

	slog.Debug("Task completed",
		"type", t.GetType(),
		"feed", t.FeedName,
		"duration", t.GetDuration(),
		"items", len(items))

	return nil
}
