package usecase

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/bufaso/shopbot/internal/domain"
)

// ChannelPoster posts one catalog entry to the public channel.
type ChannelPoster interface {
	PostItem(ctx context.Context, item *domain.PublishItem) error
}

// PublisherUC is the batch "read unpublished rows, post each, mark
// published" loop. Posts are rate limited so a large backlog does not trip
// the chat platform's flood control.
type PublisherUC struct {
	Posts   domain.PublishRepo
	Channel ChannelPoster
	Limiter *rate.Limiter
}

func NewPublisherUC(posts domain.PublishRepo, channel ChannelPoster, limiter *rate.Limiter) *PublisherUC {
	return &PublisherUC{Posts: posts, Channel: channel, Limiter: limiter}
}

// PublishAll posts every unpublished row and marks it published. A row is
// marked only after its post succeeded; a failed post leaves the row for
// the next run. Returns published and total counts.
func (uc *PublisherUC) PublishAll(ctx context.Context) (int, int, error) {
	cctx, cancel := storeCtx(ctx)
	items, err := uc.Posts.Unpublished(cctx)
	cancel()
	if err != nil {
		return 0, 0, storeErr(err)
	}

	published := 0
	for i := range items {
		it := &items[i]
		if uc.Limiter != nil {
			if err := uc.Limiter.Wait(ctx); err != nil {
				return published, len(items), err
			}
		}
		if err := uc.Channel.PostItem(ctx, it); err != nil {
			log.Warn().Err(err).Str("product_id", it.ProductID).Msg("channel post failed")
			continue
		}
		mctx, mcancel := storeCtx(ctx)
		err := uc.Posts.MarkPublished(mctx, it.Row)
		mcancel()
		if err != nil {
			log.Warn().Err(err).Str("product_id", it.ProductID).Msg("mark published failed")
			continue
		}
		published++
	}
	return published, len(items), nil
}

// Unpublished lists the rows still waiting for publication.
func (uc *PublisherUC) Unpublished(ctx context.Context) ([]domain.PublishItem, error) {
	cctx, cancel := storeCtx(ctx)
	defer cancel()
	items, err := uc.Posts.Unpublished(cctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return items, nil
}

// PublishOne posts a single unpublished row picked by product id and marks
// it published.
func (uc *PublisherUC) PublishOne(ctx context.Context, productID string) (*domain.PublishItem, error) {
	it, err := uc.Preview(ctx, productID)
	if err != nil {
		return nil, err
	}
	if uc.Limiter != nil {
		if err := uc.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if err := uc.Channel.PostItem(ctx, it); err != nil {
		return nil, err
	}
	mctx, cancel := storeCtx(ctx)
	defer cancel()
	if err := uc.Posts.MarkPublished(mctx, it.Row); err != nil {
		return nil, storeErr(err)
	}
	return it, nil
}

// Preview returns one unpublished row by product id, or ErrNotFound when it
// is absent or already published.
func (uc *PublisherUC) Preview(ctx context.Context, productID string) (*domain.PublishItem, error) {
	cctx, cancel := storeCtx(ctx)
	defer cancel()
	items, err := uc.Posts.Unpublished(cctx)
	if err != nil {
		return nil, storeErr(err)
	}
	for i := range items {
		if items[i].ProductID == productID {
			return &items[i], nil
		}
	}
	return nil, domain.ErrNotFound
}
